package game

import (
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

// Achievement is a badge derived from the player's data. Nothing about it
// is stored; progress is recomputed from the blobs on every call.
type Achievement struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"` // milestone, progress, special
	Category    string `json:"category"`
	MaxProgress int    `json:"max_progress"`

	progress func(*models.UserData) int
}

type AchievementView struct {
	Achievement
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

func completedCount(data *models.UserData) int {
	n := 0
	for _, e := range data.MissionLog {
		if e.Status == models.StatusCompleted {
			n++
		}
	}
	return n
}

func weekendCompletions(data *models.UserData) int {
	n := 0
	for _, e := range data.MissionLog {
		wd := e.Date.Weekday()
		if e.Status == models.StatusCompleted && (wd == time.Saturday || wd == time.Sunday) {
			n++
		}
	}
	return n
}

func maxAttributeXP(data *models.UserData) int {
	best := 0
	for _, a := range data.Attributes {
		if a.CurrentXP > best {
			best = a.CurrentXP
		}
	}
	return best
}

func reviewedDecisions(data *models.UserData) int {
	n := 0
	for _, d := range data.Decisions {
		if d.RegretCheck != nil {
			n++
		}
	}
	return n
}

var achievements = []Achievement{
	{ID: "first-quest", Icon: "🎯", Title: "First Quest", Description: "Complete your first mission", Type: "milestone", Category: "progress", MaxProgress: 1, progress: completedCount},
	{ID: "centurion", Icon: "💯", Title: "Centurion", Description: "Complete 100 missions", Type: "progress", Category: "progress", MaxProgress: 100, progress: completedCount},
	{ID: "level-5", Icon: "⭐", Title: "Rising Hero", Description: "Reach level 5", Type: "milestone", Category: "level", MaxProgress: 5,
		progress: func(d *models.UserData) int { return d.Profile.CurrentLevel }},
	{ID: "streak-7", Icon: "🔥", Title: "On Fire", Description: "Keep a 7 day streak", Type: "progress", Category: "streak", MaxProgress: 7,
		progress: func(d *models.UserData) int { return d.Profile.StreakDays }},
	{ID: "streak-30", Icon: "🌋", Title: "Unstoppable", Description: "Keep a 30 day streak", Type: "progress", Category: "streak", MaxProgress: 30,
		progress: func(d *models.UserData) int { return d.Profile.StreakDays }},
	{ID: "chronicler", Icon: "📜", Title: "Chronicler", Description: "Write 10 journal entries", Type: "progress", Category: "journal", MaxProgress: 10,
		progress: func(d *models.UserData) int { return len(d.Journal) }},
	{ID: "weekend-warrior", Icon: "🏖️", Title: "Weekend Warrior", Description: "Complete 5 missions on weekends", Type: "progress", Category: "time", MaxProgress: 5, progress: weekendCompletions},
	{ID: "specialist", Icon: "🎓", Title: "Specialist", Description: "Collect 1000 XP in a single attribute", Type: "progress", Category: "attributes", MaxProgress: 1000, progress: maxAttributeXP},
	{ID: "hindsight", Icon: "🧭", Title: "Hindsight", Description: "Look back on 3 decisions", Type: "progress", Category: "decisions", MaxProgress: 3, progress: reviewedDecisions},
	{ID: "treat-yourself", Icon: "🎁", Title: "Treat Yourself", Description: "Redeem a reward", Type: "special", Category: "shop", MaxProgress: 1,
		progress: func(d *models.UserData) int { return len(d.Rewards.Redemptions) }},
}

// Achievements evaluates every badge against data, progress capped at the
// badge's maximum.
func Achievements(data *models.UserData) []AchievementView {
	out := make([]AchievementView, 0, len(achievements))
	for _, a := range achievements {
		p := a.progress(data)
		if p > a.MaxProgress {
			p = a.MaxProgress
		}
		out = append(out, AchievementView{Achievement: a, Progress: p, Completed: p >= a.MaxProgress})
	}
	return out
}

// NewlyEarned returns the badges completed in after but not in before.
func NewlyEarned(before, after []AchievementView) []AchievementView {
	had := make(map[string]bool, len(before))
	for _, v := range before {
		if v.Completed {
			had[v.ID] = true
		}
	}
	out := []AchievementView{}
	for _, v := range after {
		if v.Completed && !had[v.ID] {
			out = append(out, v)
		}
	}
	return out
}
