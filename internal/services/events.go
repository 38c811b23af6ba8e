package services

import "time"

// Event kinds pushed to the player's open browser tabs.
const (
	EventMissionCompleted = "mission_completed"
	EventLevelUp          = "level_up"
	EventAchievement      = "achievement"
	EventRedeemed         = "reward_redeemed"
	EventSaved            = "saved"
	EventConflict         = "conflict"
)

type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers events to one user. Implementations must not block.
type Notifier interface {
	Notify(userID string, ev Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, Event) {}
