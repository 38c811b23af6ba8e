package game

import (
	"testing"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

// 2025-06-02 is a Monday.
var (
	monday    = models.NewDate(2025, time.June, 2)
	wednesday = monday.AddDays(2)
	saturday  = monday.AddDays(5)
	sunday    = monday.AddDays(6)
	julyFirst = models.NewDate(2025, time.July, 1)
	juneLast  = models.NewDate(2025, time.June, 30)
)

func mission(t models.MissionType, rule string) models.Mission {
	return models.Mission{
		ID:         string(t) + "-" + rule,
		Name:       "test",
		Type:       t,
		BaseXP:     10,
		StartDate:  models.NewDate(2025, time.January, 1),
		Recurrence: rule,
	}
}

func TestIsActiveDaily(t *testing.T) {
	cases := []struct {
		rule string
		day  models.Date
		want bool
	}{
		{models.RecurEveryday, wednesday, true},
		{models.RecurEveryday, sunday, true},
		{models.RecurWeekdays, wednesday, true},
		{models.RecurWeekdays, monday, true},
		{models.RecurWeekdays, saturday, false},
		{models.RecurWeekdays, sunday, false},
		{models.RecurWeekends, saturday, true},
		{models.RecurWeekends, sunday, true},
		{models.RecurWeekends, wednesday, false},
		{"fortnightly", wednesday, false},
		{"", wednesday, false},
	}
	for _, c := range cases {
		if got := IsActive(mission(models.MissionDaily, c.rule), c.day); got != c.want {
			t.Fatalf("daily %q on %s (%s)=%v, want %v", c.rule, c.day, c.day.Weekday(), got, c.want)
		}
	}
}

func TestIsActiveWeeklyAllWeekdays(t *testing.T) {
	names := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	for i, name := range names {
		m := mission(models.MissionWeekly, name)
		for j := range names {
			day := monday.AddDays(j)
			if got := IsActive(m, day); got != (i == j) {
				t.Fatalf("weekly %q on %s=%v, want %v", name, day.Weekday(), got, i == j)
			}
		}
	}
	if !IsActive(mission(models.MissionWeekly, "Friday"), monday.AddDays(4)) {
		t.Fatalf("weekday tags should be case-insensitive")
	}
}

func TestIsActiveMonthly(t *testing.T) {
	first := mission(models.MissionMonthly, models.RecurFirstDay)
	if !IsActive(first, julyFirst) {
		t.Fatalf("first_day should be due on the 1st")
	}
	if IsActive(first, julyFirst.AddDays(1)) {
		t.Fatalf("first_day should not be due on the 2nd")
	}

	last := mission(models.MissionMonthly, models.RecurLastDay)
	if IsActive(last, juneLast) || IsActive(last, julyFirst) {
		t.Fatalf("last_day is reserved and never due")
	}
}

func TestIsActiveEpicAndOneOff(t *testing.T) {
	for _, typ := range []models.MissionType{models.MissionEpic, models.MissionOneOff} {
		m := mission(typ, "")
		for i := 0; i < 7; i++ {
			if !IsActive(m, monday.AddDays(i)) {
				t.Fatalf("%s should be due every day inside its bounds", typ)
			}
		}
	}
}

func TestIsActiveBounds(t *testing.T) {
	m := mission(models.MissionDaily, models.RecurEveryday)
	m.StartDate = monday
	end := saturday
	m.EndDate = &end

	if IsActive(m, monday.AddDays(-1)) {
		t.Fatalf("due before start")
	}
	if !IsActive(m, monday) || !IsActive(m, saturday) {
		t.Fatalf("bounds are inclusive")
	}
	if IsActive(m, sunday) {
		t.Fatalf("due after end")
	}
}

func TestIsActiveUnknownTypeFailsClosed(t *testing.T) {
	if IsActive(mission("quarterly", models.RecurEveryday), wednesday) {
		t.Fatalf("unknown type must not be due")
	}
}

func TestIsCompleted(t *testing.T) {
	m := mission(models.MissionDaily, models.RecurEveryday)
	log := []models.MissionLogEntry{
		{MissionID: m.ID, Date: monday, Status: models.StatusCompleted},
		{MissionID: "other", Date: wednesday, Status: models.StatusCompleted},
		{MissionID: m.ID, Date: wednesday, Status: "skipped"},
	}
	if !IsCompleted(m, monday, log) {
		t.Fatalf("monday should be completed")
	}
	if IsCompleted(m, wednesday, log) {
		t.Fatalf("only completed entries for this mission count")
	}
}

func TestListDueKeepsCatalogOrder(t *testing.T) {
	missions := []models.Mission{
		mission(models.MissionWeekly, "saturday"),
		mission(models.MissionDaily, models.RecurWeekends),
		mission(models.MissionDaily, models.RecurWeekdays),
		mission(models.MissionEpic, ""),
	}
	log := []models.MissionLogEntry{
		{MissionID: missions[3].ID, Date: saturday, Status: models.StatusCompleted},
	}

	due := ListDue(missions, saturday, log)
	if len(due) != 3 {
		t.Fatalf("due=%d, want 3", len(due))
	}
	wantIDs := []string{missions[0].ID, missions[1].ID, missions[3].ID}
	for i, d := range due {
		if d.Mission.ID != wantIDs[i] {
			t.Fatalf("due[%d]=%s, want %s", i, d.Mission.ID, wantIDs[i])
		}
	}
	if due[0].Completed || !due[2].Completed {
		t.Fatalf("completion flags wrong: %+v", due)
	}
}

func TestCompleteIsNotIdempotent(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	strength := "strength"
	m := mission(models.MissionDaily, models.RecurEveryday)
	m.BaseXP = 60
	m.TokensReward = 3
	m.AttributeID = &strength
	now := time.Date(2025, time.June, 2, 20, 0, 0, 0, time.UTC)

	first := Complete(data, m, monday, now)
	second := Complete(data, m, monday, now.Add(time.Minute))

	if len(data.MissionLog) != 2 {
		t.Fatalf("log entries=%d, want 2", len(data.MissionLog))
	}
	for _, e := range data.MissionLog {
		if e.Date != monday || e.Status != models.StatusCompleted || e.XPAwarded != 60 || e.TokensAwarded != 3 {
			t.Fatalf("unexpected entry %+v", e)
		}
	}
	// 120 XP: level 1 -> 2 after spending 100
	if data.Profile.CurrentLevel != 2 || data.Profile.CurrentXP != 20 {
		t.Fatalf("profile=%+v, want level 2 xp 20", data.Profile)
	}
	if data.Profile.TotalTokens != 6 {
		t.Fatalf("tokens=%d, want 6", data.Profile.TotalTokens)
	}
	if a := models.FindAttribute(data.Attributes, "strength"); a.CurrentXP != 120 {
		t.Fatalf("strength xp=%d, want 120", a.CurrentXP)
	}
	if first.LevelsGained != 0 || second.LevelsGained != 1 || second.LevelAfter != 2 {
		t.Fatalf("results: first=%+v second=%+v", first, second)
	}
}

func TestCompleteWithDanglingAttribute(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	gone := "luck"
	m := mission(models.MissionOneOff, "")
	m.AttributeID = &gone

	res := Complete(data, m, monday, time.Now())
	if res.AttributeHit {
		t.Fatalf("dangling attribute should be skipped")
	}
	if data.Profile.CurrentXP != m.BaseXP {
		t.Fatalf("profile still gets XP, got %d", data.Profile.CurrentXP)
	}
}
