package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

type Summary struct {
	Date           models.Date `json:"date"`
	PlayerName     string      `json:"player_name"`
	Level          int         `json:"level"`
	XP             int         `json:"xp"`
	XPNeeded       int         `json:"xp_needed"`
	Progress       float64     `json:"progress"`
	Tokens         int         `json:"tokens"`
	StreakDays     int         `json:"streak_days"`
	DueCount       int         `json:"due_count"`
	CompletedCount int         `json:"completed_count"`
}

func Summarize(data *models.UserData, day models.Date) Summary {
	s := Summary{
		Date:       day,
		PlayerName: data.Settings.PlayerName,
		Level:      data.Profile.CurrentLevel,
		XP:         data.Profile.CurrentXP,
		XPNeeded:   XPNeededFor(data.Profile.CurrentLevel, data.Profile.XPBasePerLevel),
		Progress:   Progress(data.Profile),
		Tokens:     data.Profile.TotalTokens,
		StreakDays: data.Profile.StreakDays,
	}
	for _, d := range ListDue(data.Missions, day, data.MissionLog) {
		s.DueCount++
		if d.Completed {
			s.CompletedCount++
		}
	}
	return s
}

type Activity struct {
	Timestamp time.Time   `json:"timestamp"`
	Date      models.Date `json:"date"`
	Kind      string      `json:"kind"` // mission, journal, redemption
	Title     string      `json:"title"`
	XP        int         `json:"xp"`
	Tokens    int         `json:"tokens"`
}

// RecentActivity merges mission completions, journal entries and
// redemptions, newest first, and keeps at most limit items.
func RecentActivity(data *models.UserData, limit int) []Activity {
	missionNames := make(map[string]string, len(data.Missions))
	for _, m := range data.Missions {
		missionNames[m.ID] = m.Name
	}
	rewardNames := make(map[string]string, len(data.Rewards.Rewards))
	for _, r := range data.Rewards.Rewards {
		rewardNames[r.ID] = r.Name
	}

	out := []Activity{}
	for _, e := range data.MissionLog {
		name, ok := missionNames[e.MissionID]
		if !ok {
			name = "deleted mission"
		}
		out = append(out, Activity{
			Timestamp: e.Timestamp, Date: e.Date, Kind: "mission",
			Title: "Completed " + name, XP: e.XPAwarded, Tokens: e.TokensAwarded,
		})
	}
	for _, j := range data.Journal {
		out = append(out, Activity{
			Timestamp: j.Timestamp, Date: j.Date, Kind: "journal",
			Title: "Journal entry", XP: j.XPAwarded,
		})
	}
	for _, r := range data.Rewards.Redemptions {
		name, ok := rewardNames[r.RewardID]
		if !ok {
			name = r.RewardID
		}
		out = append(out, Activity{
			Timestamp: r.Timestamp, Date: r.Date, Kind: "redemption",
			Title: fmt.Sprintf("Redeemed %s", name), Tokens: -r.TokensSpent,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
