package game

import (
	"testing"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

func viewByID(views []AchievementView, id string) AchievementView {
	for _, v := range views {
		if v.ID == id {
			return v
		}
	}
	return AchievementView{}
}

func TestAchievementsProgressAndNewlyEarned(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	saturday := models.NewDate(2025, time.June, 7)
	m, err := AddMission(data, MissionInput{Name: "Hike", Type: models.MissionEpic, BaseXP: 10}, saturday)
	if err != nil {
		t.Fatal(err)
	}

	before := Achievements(data)
	if viewByID(before, "first-quest").Completed {
		t.Fatalf("nothing done yet")
	}

	Complete(data, m, saturday, time.Now())
	Complete(data, m, saturday.AddDays(1), time.Now())
	after := Achievements(data)

	earned := NewlyEarned(before, after)
	if len(earned) != 1 || earned[0].ID != "first-quest" {
		t.Fatalf("earned=%+v", earned)
	}
	if w := viewByID(after, "weekend-warrior"); w.Progress != 2 || w.Completed {
		t.Fatalf("weekend-warrior=%+v", w)
	}
	if NewlyEarned(after, after) == nil || len(NewlyEarned(after, after)) != 0 {
		t.Fatalf("nothing new between identical snapshots")
	}
}

func TestAchievementProgressIsCapped(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	data.Profile.CurrentLevel = 12
	if v := viewByID(Achievements(data), "level-5"); v.Progress != 5 || !v.Completed {
		t.Fatalf("level-5=%+v", v)
	}
}
