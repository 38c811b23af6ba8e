package models

import "time"

type CalendarEvent struct {
	ID        string `json:"id" yaml:"id"`
	Date      Date   `json:"date" yaml:"date"`
	StartTime string `json:"start_time" yaml:"start_time"` // HH:MM
	EndTime   string `json:"end_time" yaml:"end_time"`
	Title     string `json:"title" yaml:"title"`
	Notes     string `json:"notes" yaml:"notes"`
}

type JournalEntry struct {
	ID           string    `json:"id" yaml:"id"`
	Date         Date      `json:"date" yaml:"date"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Text         string    `json:"text" yaml:"text"`
	AttributeIDs []string  `json:"attribute_ids" yaml:"attribute_ids"`
	XPAwarded    int       `json:"xp_awarded" yaml:"xp_awarded"`
	Mood         string    `json:"mood" yaml:"mood"`
}

// Option is one side of a two-way Decision. Payoffs are rated 1..10.
type Option struct {
	Name            string `json:"name" yaml:"name"`
	ShortTermPayoff int    `json:"short_term_payoff" yaml:"short_term_payoff"`
	LongTermPayoff  int    `json:"long_term_payoff" yaml:"long_term_payoff"`
}

type Decision struct {
	ID           string    `json:"id" yaml:"id"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Situation    string    `json:"situation" yaml:"situation"`
	Options      [2]Option `json:"options" yaml:"options"`
	ChosenOption string    `json:"chosen_option" yaml:"chosen_option"`
	Reason       string    `json:"reason" yaml:"reason"`
	RegretCheck  *bool     `json:"regret_check" yaml:"regret_check"`
	RegretNotes  string    `json:"regret_notes" yaml:"regret_notes"`
}

type Reward struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	CostTokens  int    `json:"cost_tokens" yaml:"cost_tokens"`
	Category    string `json:"category" yaml:"category"`
}

type Redemption struct {
	ID          string    `json:"id" yaml:"id"`
	RewardID    string    `json:"reward_id" yaml:"reward_id"`
	Date        Date      `json:"date" yaml:"date"`
	TokensSpent int       `json:"tokens_spent" yaml:"tokens_spent"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// RewardShop is the content of the "rewards" blob.
type RewardShop struct {
	Rewards     []Reward     `json:"rewards" yaml:"rewards"`
	Redemptions []Redemption `json:"redemptions" yaml:"redemptions"`
}

func DefaultRewards() []Reward {
	return []Reward{
		{ID: "movie-night", Name: "Movie night", Description: "A film with snacks, guilt free", CostTokens: 30, Category: "leisure"},
		{ID: "gaming-hour", Name: "One hour of games", CostTokens: 15, Category: "leisure"},
		{ID: "nice-dinner", Name: "Dinner out", Description: "Pick any restaurant", CostTokens: 80, Category: "treat"},
	}
}
