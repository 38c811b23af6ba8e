package game

import "github.com/tahcohcat/liferpg-web/internal/models"

// Reset starts the player over: a fresh profile with the same XP base, and
// empty mission log, journal and decisions. Settings, attributes, missions,
// calendar and the reward shop are kept; attribute XP goes back to zero.
func Reset(data *models.UserData) {
	data.Profile = models.NewProfile(data.Profile.XPBasePerLevel)
	for i := range data.Attributes {
		data.Attributes[i].CurrentXP = 0
	}
	data.MissionLog = []models.MissionLogEntry{}
	data.Journal = []models.JournalEntry{}
	data.Decisions = []models.Decision{}
}
