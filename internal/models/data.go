package models

import "time"

// Fixed blob names in a user's namespace.
const (
	BlobProfile    = "profile.json"
	BlobConfig     = "config.json"
	BlobAttributes = "attributes.json"
	BlobMissions   = "missions.json"
	BlobCalendar   = "calendar.json"
	BlobRewards    = "rewards.json"
	BlobMissionLog = "mission_log.jsonl"
	BlobJournal    = "journal.jsonl"
	BlobDecisions  = "decisions.jsonl"
)

// BlobNames lists every blob in the order they are loaded and saved.
var BlobNames = []string{
	BlobProfile,
	BlobConfig,
	BlobAttributes,
	BlobMissions,
	BlobCalendar,
	BlobRewards,
	BlobMissionLog,
	BlobJournal,
	BlobDecisions,
}

// IsLineLog reports whether a blob uses the one-JSON-value-per-line encoding.
func IsLineLog(name string) bool {
	switch name {
	case BlobMissionLog, BlobJournal, BlobDecisions:
		return true
	default:
		return false
	}
}

// UserData is everything one user owns. It is loaded and saved as a set of
// independent blobs.
type UserData struct {
	Profile    Profile           `json:"profile" yaml:"profile"`
	Settings   Settings          `json:"config" yaml:"config"`
	Attributes []Attribute       `json:"attributes" yaml:"attributes"`
	Missions   []Mission         `json:"missions" yaml:"missions"`
	Calendar   []CalendarEvent   `json:"calendar" yaml:"calendar"`
	Rewards    RewardShop        `json:"rewards" yaml:"rewards"`
	MissionLog []MissionLogEntry `json:"mission_log" yaml:"mission_log"`
	Journal    []JournalEntry    `json:"journal" yaml:"journal"`
	Decisions  []Decision        `json:"decisions" yaml:"decisions"`
}

// Defaults describe the seed values for a freshly provisioned namespace.
type Defaults struct {
	XPBasePerLevel int
	PlayerName     string
	Timezone       string
	AutoSave       bool
}

func NewUserData(d Defaults) *UserData {
	if d.PlayerName == "" {
		d.PlayerName = "Nameless Hero"
	}
	return &UserData{
		Profile: NewProfile(d.XPBasePerLevel),
		Settings: Settings{
			PlayerName: d.PlayerName,
			Timezone:   d.Timezone,
			AutoSave:   d.AutoSave,
		},
		Attributes: DefaultAttributes(),
		Missions:   []Mission{},
		Calendar:   []CalendarEvent{},
		Rewards: RewardShop{
			Rewards:     DefaultRewards(),
			Redemptions: []Redemption{},
		},
		MissionLog: []MissionLogEntry{},
		Journal:    []JournalEntry{},
		Decisions:  []Decision{},
	}
}

const ExportFormatVersion = "liferpg/v1"

// Export is the one-way download of a user's whole namespace.
type Export struct {
	FormatVersion string    `json:"format_version" yaml:"format_version"`
	ExportedAt    time.Time `json:"exported_at" yaml:"exported_at"`
	UserID        string    `json:"user_id" yaml:"user_id"`
	UserData      `yaml:",inline"`
}
