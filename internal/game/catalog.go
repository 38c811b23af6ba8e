package game

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

type AttributeInput struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// AddAttribute appends a new attribute with zero XP. Names are unique,
// compared case-insensitively.
func AddAttribute(data *models.UserData, in AttributeInput) (models.Attribute, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Attribute{}, invalid("name", "attribute must have a name")
	}
	for _, a := range data.Attributes {
		if strings.EqualFold(a.Name, name) {
			return models.Attribute{}, invalid("name", fmt.Sprintf("attribute %q already exists", a.Name))
		}
	}

	id := slugify(name)
	if id == "" || models.FindAttribute(data.Attributes, id) != nil {
		id = NewID()
	}
	attr := models.Attribute{
		ID:          id,
		Name:        name,
		Color:       in.Color,
		Icon:        in.Icon,
		Description: in.Description,
	}
	data.Attributes = append(data.Attributes, attr)
	return attr, nil
}

// RemoveAttribute deletes the attribute. Missions and journal entries that
// still reference it keep the dangling id.
func RemoveAttribute(data *models.UserData, id string) error {
	for i := range data.Attributes {
		if data.Attributes[i].ID == id {
			data.Attributes = append(data.Attributes[:i], data.Attributes[i+1:]...)
			return nil
		}
	}
	return NotFoundError{Kind: "attribute", ID: id}
}

type MissionInput struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Type         models.MissionType `json:"type"`
	BaseXP       int                `json:"base_xp"`
	TokensReward int                `json:"tokens_reward"`
	AttributeID  *string            `json:"attribute_id"`
	StartDate    models.Date        `json:"start_date"`
	EndDate      *models.Date       `json:"end_date"`
	Recurrence   string             `json:"recurrence"`
}

func defaultRecurrence(t models.MissionType, start models.Date) string {
	switch t {
	case models.MissionDaily:
		return models.RecurEveryday
	case models.MissionWeekly:
		return strings.ToLower(start.Weekday().String())
	case models.MissionMonthly:
		return models.RecurFirstDay
	default:
		return ""
	}
}

// AddMission validates in and appends it to the catalog. A missing start
// date defaults to today, a missing recurrence to the type's natural one.
func AddMission(data *models.UserData, in MissionInput, today models.Date) (models.Mission, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Mission{}, invalid("name", "mission must have a name")
	}
	mtype := models.MissionType(strings.ToLower(strings.TrimSpace(string(in.Type))))
	if !mtype.IsValid() {
		return models.Mission{}, invalid("type", fmt.Sprintf("unknown mission type %q", in.Type))
	}
	if in.BaseXP <= 0 {
		return models.Mission{}, invalid("base_xp", "must be greater than zero")
	}
	if in.TokensReward < 0 {
		return models.Mission{}, invalid("tokens_reward", "must not be negative")
	}

	start := in.StartDate
	if start.IsZero() {
		start = today
	}
	if in.EndDate != nil && in.EndDate.Before(start) {
		return models.Mission{}, invalid("end_date", "must not be before start_date")
	}

	var attrID *string
	if in.AttributeID != nil && strings.TrimSpace(*in.AttributeID) != "" {
		id := strings.TrimSpace(*in.AttributeID)
		attrID = &id
	}

	recurrence := strings.ToLower(strings.TrimSpace(in.Recurrence))
	if recurrence == "" {
		recurrence = defaultRecurrence(mtype, start)
	}

	m := models.Mission{
		ID:           NewID(),
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		Type:         mtype,
		BaseXP:       in.BaseXP,
		TokensReward: in.TokensReward,
		AttributeID:  attrID,
		StartDate:    start,
		EndDate:      in.EndDate,
		Recurrence:   recurrence,
	}
	data.Missions = append(data.Missions, m)
	return m, nil
}

func FindMission(data *models.UserData, id string) (models.Mission, error) {
	for _, m := range data.Missions {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Mission{}, NotFoundError{Kind: "mission", ID: id}
}

// RemoveMission deletes the definition. Its log entries stay.
func RemoveMission(data *models.UserData, id string) error {
	for i := range data.Missions {
		if data.Missions[i].ID == id {
			data.Missions = append(data.Missions[:i], data.Missions[i+1:]...)
			return nil
		}
	}
	return NotFoundError{Kind: "mission", ID: id}
}

// SearchMissions returns up to limit missions whose names match query:
// substring matches first, then fuzzy matches.
func SearchMissions(missions []models.Mission, query string, limit int) []models.Mission {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(missions) == 0 {
		return []models.Mission{}
	}
	if limit <= 0 {
		limit = 5
	}

	out := []models.Mission{}
	seen := make(map[string]bool)
	for _, m := range missions {
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
			seen[m.ID] = true
		}
	}
	if len(out) >= limit {
		return out[:limit]
	}

	byName := make(map[string][]models.Mission)
	names := make([]string, 0, len(missions))
	for _, m := range missions {
		key := strings.ToLower(m.Name)
		if _, ok := byName[key]; !ok {
			names = append(names, key)
		}
		byName[key] = append(byName[key], m)
	}
	sort.Strings(names)

	cm := closestmatch.New(names, []int{2, 3})
	for _, name := range cm.ClosestN(q, limit) {
		for _, m := range byName[name] {
			if seen[m.ID] || len(out) >= limit {
				continue
			}
			out = append(out, m)
			seen[m.ID] = true
		}
	}
	return out
}

type RewardInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CostTokens  int    `json:"cost_tokens"`
	Category    string `json:"category"`
}

func AddReward(data *models.UserData, in RewardInput) (models.Reward, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Reward{}, invalid("name", "reward must have a name")
	}
	if in.CostTokens < 0 {
		return models.Reward{}, invalid("cost_tokens", "must not be negative")
	}
	r := models.Reward{
		ID:          NewID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CostTokens:  in.CostTokens,
		Category:    strings.TrimSpace(in.Category),
	}
	data.Rewards.Rewards = append(data.Rewards.Rewards, r)
	return r, nil
}

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type CalendarInput struct {
	Date      models.Date `json:"date"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Title     string      `json:"title"`
	Notes     string      `json:"notes"`
}

func AddCalendarEvent(data *models.UserData, in CalendarInput) (models.CalendarEvent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.CalendarEvent{}, invalid("title", "event must have a title")
	}
	if in.Date.IsZero() {
		return models.CalendarEvent{}, invalid("date", "is required")
	}
	for field, v := range map[string]string{"start_time": in.StartTime, "end_time": in.EndTime} {
		if v != "" && !clockRe.MatchString(v) {
			return models.CalendarEvent{}, invalid(field, "must be HH:MM")
		}
	}
	// HH:MM compares correctly as a string
	if in.StartTime != "" && in.EndTime != "" && in.EndTime < in.StartTime {
		return models.CalendarEvent{}, invalid("end_time", "must not be before start_time")
	}

	ev := models.CalendarEvent{
		ID:        NewID(),
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Title:     title,
		Notes:     in.Notes,
	}
	data.Calendar = append(data.Calendar, ev)
	return ev, nil
}

// EventsOn returns the events on day ordered by start time.
func EventsOn(events []models.CalendarEvent, day models.Date) []models.CalendarEvent {
	out := []models.CalendarEvent{}
	for _, ev := range events {
		if ev.Date == day {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

type SettingsInput struct {
	PlayerName     *string `json:"player_name"`
	Timezone       *string `json:"timezone"`
	AutoSave       *bool   `json:"auto_save"`
	XPBasePerLevel *int    `json:"xp_base_per_level"`
}

// ApplySettings updates the fields present in in. The XP base lives on the
// profile and is bounded to 10..1000.
func ApplySettings(data *models.UserData, in SettingsInput, validTimezone func(string) bool) error {
	if in.XPBasePerLevel != nil && (*in.XPBasePerLevel < 10 || *in.XPBasePerLevel > 1000) {
		return invalid("xp_base_per_level", "must be between 10 and 1000")
	}
	if in.Timezone != nil && *in.Timezone != "" && validTimezone != nil && !validTimezone(*in.Timezone) {
		return invalid("timezone", fmt.Sprintf("unknown timezone %q", *in.Timezone))
	}

	if in.PlayerName != nil {
		name := strings.TrimSpace(*in.PlayerName)
		if name == "" {
			name = "Nameless Hero"
		}
		data.Settings.PlayerName = name
	}
	if in.Timezone != nil {
		data.Settings.Timezone = *in.Timezone
	}
	if in.AutoSave != nil {
		data.Settings.AutoSave = *in.AutoSave
	}
	if in.XPBasePerLevel != nil {
		data.Profile.XPBasePerLevel = *in.XPBasePerLevel
		Normalize(&data.Profile)
	}
	return nil
}
