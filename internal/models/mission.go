package models

import "time"

type MissionType string

const (
	MissionDaily   MissionType = "daily"
	MissionWeekly  MissionType = "weekly"
	MissionMonthly MissionType = "monthly"
	MissionEpic    MissionType = "epic"
	MissionOneOff  MissionType = "one_off"
)

func (t MissionType) IsValid() bool {
	switch t {
	case MissionDaily, MissionWeekly, MissionMonthly, MissionEpic, MissionOneOff:
		return true
	default:
		return false
	}
}

// Recurrence tags, interpreted relative to the mission type.
const (
	RecurEveryday = "everyday"
	RecurWeekdays = "weekdays"
	RecurWeekends = "weekends"
	RecurFirstDay = "first_day"
	RecurLastDay  = "last_day"
)

// Mission is a definable, possibly recurring task.
type Mission struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Description  string      `json:"description" yaml:"description"`
	Type         MissionType `json:"type" yaml:"type"`
	BaseXP       int         `json:"base_xp" yaml:"base_xp"`
	TokensReward int         `json:"tokens_reward" yaml:"tokens_reward"`
	AttributeID  *string     `json:"attribute_id" yaml:"attribute_id"`
	StartDate    Date        `json:"start_date" yaml:"start_date"`
	EndDate      *Date       `json:"end_date" yaml:"end_date"`
	Recurrence   string      `json:"recurrence" yaml:"recurrence"`
}

// AttributeKey returns the attribute reference, or "" when unset.
func (m Mission) AttributeKey() string {
	if m.AttributeID == nil {
		return ""
	}
	return *m.AttributeID
}

const StatusCompleted = "completed"

type MissionLogEntry struct {
	MissionID     string    `json:"mission_id" yaml:"mission_id"`
	Date          Date      `json:"date" yaml:"date"`
	Status        string    `json:"status" yaml:"status"`
	XPAwarded     int       `json:"xp_awarded" yaml:"xp_awarded"`
	TokensAwarded int       `json:"tokens_awarded" yaml:"tokens_awarded"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Notes         string    `json:"notes" yaml:"notes"`
}
