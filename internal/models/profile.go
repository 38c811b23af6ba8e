package models

// Profile is the player's progression state.
type Profile struct {
	CurrentLevel   int   `json:"current_level" yaml:"current_level"`
	CurrentXP      int   `json:"current_xp" yaml:"current_xp"`
	XPBasePerLevel int   `json:"xp_base_per_level" yaml:"xp_base_per_level"`
	TotalTokens    int   `json:"total_tokens" yaml:"total_tokens"`
	StreakDays     int   `json:"streak_days" yaml:"streak_days"`
	LastActiveDate *Date `json:"last_active_date" yaml:"last_active_date"`
}

func NewProfile(xpBasePerLevel int) Profile {
	if xpBasePerLevel <= 0 {
		xpBasePerLevel = 100
	}
	return Profile{
		CurrentLevel:   1,
		XPBasePerLevel: xpBasePerLevel,
	}
}

// Settings is stored in the "config" blob.
type Settings struct {
	PlayerName string `json:"player_name" yaml:"player_name"`
	Timezone   string `json:"timezone" yaml:"timezone"`
	AutoSave   bool   `json:"auto_save" yaml:"auto_save"`
}

// Attribute is a skill that collects XP, e.g. Strength.
type Attribute struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	CurrentXP   int    `json:"current_xp" yaml:"current_xp"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FindAttribute resolves a weak attribute reference. A dangling or empty id
// yields nil.
func FindAttribute(attrs []Attribute, id string) *Attribute {
	if id == "" {
		return nil
	}
	for i := range attrs {
		if attrs[i].ID == id {
			return &attrs[i]
		}
	}
	return nil
}

// DefaultAttributes seeds a new namespace.
func DefaultAttributes() []Attribute {
	return []Attribute{
		{ID: "strength", Name: "Strength", Color: "#c0392b", Icon: "💪", Description: "Training, sport, physical work"},
		{ID: "intelligence", Name: "Intelligence", Color: "#2980b9", Icon: "🧠", Description: "Study, reading, deep work"},
		{ID: "charisma", Name: "Charisma", Color: "#8e44ad", Icon: "🗣️", Description: "Social time, communication"},
		{ID: "vitality", Name: "Vitality", Color: "#27ae60", Icon: "🌿", Description: "Sleep, food, rest"},
	}
}
