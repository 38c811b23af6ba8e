package game

import (
	"strings"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

var weekdayTags = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// IsActive reports whether mission is due on day. Unknown type/recurrence
// combinations are never due.
func IsActive(m models.Mission, day models.Date) bool {
	if day.Before(m.StartDate) {
		return false
	}
	if m.EndDate != nil && day.After(*m.EndDate) {
		return false
	}

	rule := strings.ToLower(strings.TrimSpace(m.Recurrence))
	switch m.Type {
	case models.MissionDaily:
		wd := day.Weekday()
		weekend := wd == time.Saturday || wd == time.Sunday
		switch rule {
		case models.RecurEveryday:
			return true
		case models.RecurWeekdays:
			return !weekend
		case models.RecurWeekends:
			return weekend
		}
		return false
	case models.MissionWeekly:
		wd, ok := weekdayTags[rule]
		return ok && day.Weekday() == wd
	case models.MissionMonthly:
		// last_day is accepted as a tag but never resolves
		return rule == models.RecurFirstDay && day.Day == 1
	case models.MissionEpic, models.MissionOneOff:
		return true
	default:
		return false
	}
}

// IsCompleted reports whether log holds a completed entry for mission on day.
func IsCompleted(m models.Mission, day models.Date, log []models.MissionLogEntry) bool {
	for _, e := range log {
		if e.MissionID == m.ID && e.Date == day && e.Status == models.StatusCompleted {
			return true
		}
	}
	return false
}

type DueMission struct {
	Mission   models.Mission `json:"mission"`
	Completed bool           `json:"completed"`
}

// ListDue keeps the missions active on day, in catalog order, each paired
// with its completion state.
func ListDue(missions []models.Mission, day models.Date, log []models.MissionLogEntry) []DueMission {
	due := []DueMission{}
	for _, m := range missions {
		if !IsActive(m, day) {
			continue
		}
		due = append(due, DueMission{Mission: m, Completed: IsCompleted(m, day, log)})
	}
	return due
}

type CompleteResult struct {
	Entry        models.MissionLogEntry `json:"entry"`
	LevelBefore  int                    `json:"level_before"`
	LevelAfter   int                    `json:"level_after"`
	LevelsGained int                    `json:"levels_gained"`
	AttributeHit bool                   `json:"attribute_hit"`
}

// Complete appends a completed entry for mission on day and pays out its XP
// and tokens. It does not check for an earlier completion: calling it twice
// for the same day logs and pays twice.
func Complete(data *models.UserData, m models.Mission, day models.Date, now time.Time) CompleteResult {
	entry := models.MissionLogEntry{
		MissionID:     m.ID,
		Date:          day,
		Status:        models.StatusCompleted,
		XPAwarded:     m.BaseXP,
		TokensAwarded: m.TokensReward,
		Timestamp:     now,
	}
	data.MissionLog = append(data.MissionLog, entry)

	res := CompleteResult{Entry: entry, LevelBefore: data.Profile.CurrentLevel}
	res.LevelsGained = GrantXP(&data.Profile, m.BaseXP)
	res.AttributeHit = GrantAttributeXP(data.Attributes, m.AttributeKey(), m.BaseXP)
	GrantTokens(&data.Profile, m.TokensReward)
	res.LevelAfter = data.Profile.CurrentLevel
	return res
}
