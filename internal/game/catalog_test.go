package game

import (
	"testing"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

func strPtr(s string) *string { return &s }

func TestAddMissionDefaults(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	today := models.NewDate(2025, time.June, 4) // Wednesday

	cases := []struct {
		typ  models.MissionType
		want string
	}{
		{models.MissionDaily, models.RecurEveryday},
		{models.MissionWeekly, "wednesday"},
		{models.MissionMonthly, models.RecurFirstDay},
		{models.MissionEpic, ""},
	}
	for _, c := range cases {
		m, err := AddMission(data, MissionInput{Name: "  Stretch ", Type: c.typ, BaseXP: 10, AttributeID: strPtr("  ")}, today)
		if err != nil {
			t.Fatalf("%s: %v", c.typ, err)
		}
		if m.Recurrence != c.want {
			t.Fatalf("%s recurrence=%q, want %q", c.typ, m.Recurrence, c.want)
		}
		if m.StartDate != today || m.Name != "Stretch" || m.AttributeID != nil {
			t.Fatalf("defaults not applied: %+v", m)
		}
	}
	if len(data.Missions) != len(cases) {
		t.Fatalf("missions=%d", len(data.Missions))
	}
}

func TestAddMissionValidation(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	today := models.NewDate(2025, time.June, 4)
	before := today.AddDays(-1)

	bad := []MissionInput{
		{Name: "", Type: models.MissionDaily, BaseXP: 10},
		{Name: "x", Type: "yearly", BaseXP: 10},
		{Name: "x", Type: models.MissionDaily, BaseXP: 0},
		{Name: "x", Type: models.MissionDaily, BaseXP: 10, TokensReward: -1},
		{Name: "x", Type: models.MissionDaily, BaseXP: 10, EndDate: &before},
	}
	for _, in := range bad {
		if _, err := AddMission(data, in, today); !IsValidation(err) {
			t.Fatalf("input %+v: err=%v, want validation error", in, err)
		}
	}
	if len(data.Missions) != 0 {
		t.Fatalf("rejected missions were stored")
	}
}

func TestRemoveMissionKeepsLog(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	today := models.NewDate(2025, time.June, 4)
	m, err := AddMission(data, MissionInput{Name: "Read", Type: models.MissionDaily, BaseXP: 10}, today)
	if err != nil {
		t.Fatal(err)
	}
	Complete(data, m, today, time.Now())

	if err := RemoveMission(data, m.ID); err != nil {
		t.Fatal(err)
	}
	if len(data.Missions) != 0 || len(data.MissionLog) != 1 {
		t.Fatalf("missions=%d log=%d", len(data.Missions), len(data.MissionLog))
	}
	if _, err := FindMission(data, m.ID); !IsNotFound(err) {
		t.Fatalf("FindMission err=%v, want not found", err)
	}
	if err := RemoveMission(data, m.ID); !IsNotFound(err) {
		t.Fatalf("second remove err=%v", err)
	}
}

func TestAddAttribute(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})

	a, err := AddAttribute(data, AttributeInput{Name: "Creative Writing", Color: "#ff00aa"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != "creative-writing" || a.CurrentXP != 0 {
		t.Fatalf("unexpected attribute %+v", a)
	}
	if _, err := AddAttribute(data, AttributeInput{Name: "STRENGTH"}); !IsValidation(err) {
		t.Fatalf("duplicate name err=%v", err)
	}
	if _, err := AddAttribute(data, AttributeInput{Name: " "}); !IsValidation(err) {
		t.Fatalf("empty name err=%v", err)
	}

	if err := RemoveAttribute(data, "creative-writing"); err != nil {
		t.Fatal(err)
	}
	if models.FindAttribute(data.Attributes, "creative-writing") != nil {
		t.Fatalf("attribute still present")
	}
	if err := RemoveAttribute(data, "creative-writing"); !IsNotFound(err) {
		t.Fatalf("second remove err=%v", err)
	}
}

func TestSearchMissions(t *testing.T) {
	missions := []models.Mission{
		{ID: "1", Name: "Meditate"},
		{ID: "2", Name: "Read a book"},
		{ID: "3", Name: "Go running"},
		{ID: "4", Name: "Read the news"},
	}

	got := SearchMissions(missions, "read", 5)
	if len(got) < 2 || got[0].ID != "2" || got[1].ID != "4" {
		t.Fatalf("substring matches should come first in catalog order: %+v", got)
	}

	got = SearchMissions(missions, "medtate", 1)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("fuzzy match for a typo: %+v", got)
	}

	if got := SearchMissions(missions, "  ", 5); len(got) != 0 {
		t.Fatalf("blank query returned %+v", got)
	}
	if got := SearchMissions(missions, "read", 1); len(got) != 1 {
		t.Fatalf("limit not honoured: %+v", got)
	}
}

func TestAddCalendarEvent(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	day := models.NewDate(2025, time.June, 4)

	for _, in := range []CalendarInput{
		{Date: day, Title: ""},
		{Title: "no date"},
		{Date: day, Title: "x", StartTime: "9:00"},
		{Date: day, Title: "x", StartTime: "24:00"},
		{Date: day, Title: "x", StartTime: "10:00", EndTime: "09:30"},
	} {
		if _, err := AddCalendarEvent(data, in); !IsValidation(err) {
			t.Fatalf("input %+v: err=%v", in, err)
		}
	}

	for _, in := range []CalendarInput{
		{Date: day, Title: "standup", StartTime: "09:30", EndTime: "09:45"},
		{Date: day, Title: "gym", StartTime: "07:00"},
		{Date: day.AddDays(1), Title: "tomorrow", StartTime: "06:00"},
	} {
		if _, err := AddCalendarEvent(data, in); err != nil {
			t.Fatalf("input %+v: %v", in, err)
		}
	}

	events := EventsOn(data.Calendar, day)
	if len(events) != 2 || events[0].Title != "gym" || events[1].Title != "standup" {
		t.Fatalf("EventsOn=%+v", events)
	}
}

func TestApplySettings(t *testing.T) {
	data := models.NewUserData(models.Defaults{XPBasePerLevel: 100})
	data.Profile.CurrentLevel = 2
	data.Profile.CurrentXP = 150
	valid := func(tz string) bool { return tz == "Europe/Paris" }

	base := 5
	if err := ApplySettings(data, SettingsInput{XPBasePerLevel: &base}, valid); !IsValidation(err) {
		t.Fatalf("base out of range err=%v", err)
	}
	tz := "Mars/Olympus"
	if err := ApplySettings(data, SettingsInput{Timezone: &tz}, valid); !IsValidation(err) {
		t.Fatalf("bad timezone err=%v", err)
	}

	base = 50
	tz = "Europe/Paris"
	name := "  "
	off := false
	if err := ApplySettings(data, SettingsInput{XPBasePerLevel: &base, Timezone: &tz, PlayerName: &name, AutoSave: &off}, valid); err != nil {
		t.Fatal(err)
	}
	if data.Settings.Timezone != tz || data.Settings.PlayerName != "Nameless Hero" || data.Settings.AutoSave {
		t.Fatalf("settings=%+v", data.Settings)
	}
	if data.Profile.CurrentXP >= XPNeededFor(data.Profile.CurrentLevel, data.Profile.XPBasePerLevel) {
		t.Fatalf("profile not normalized after base change: %+v", data.Profile)
	}
}
