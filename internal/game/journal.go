package game

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

// NewID generates entity ids.
var NewID = func() string {
	return uuid.NewString()
}

type JournalInput struct {
	Text         string   `json:"text"`
	AttributeIDs []string `json:"attribute_ids"`
	XPAwarded    int      `json:"xp_awarded"`
	Mood         string   `json:"mood"`
}

func (in JournalInput) validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return invalid("text", "journal entry cannot be empty")
	}
	if in.XPAwarded < 0 {
		return invalid("xp_awarded", "must not be negative")
	}
	return nil
}

// UpsertJournal keeps at most one entry per day. An existing entry for day is
// replaced in place and keeps its id; otherwise a new entry is appended and
// only then its XP is granted to the profile and to each referenced
// attribute. Editing a day never pays XP again, so the entry keeps the
// xp_awarded that was actually granted.
func UpsertJournal(data *models.UserData, day models.Date, in JournalInput, now time.Time) (models.JournalEntry, bool, error) {
	if err := in.validate(); err != nil {
		return models.JournalEntry{}, false, err
	}

	entry := models.JournalEntry{
		Date:         day,
		Timestamp:    now,
		Text:         strings.TrimSpace(in.Text),
		AttributeIDs: in.AttributeIDs,
		XPAwarded:    in.XPAwarded,
		Mood:         in.Mood,
	}
	if entry.AttributeIDs == nil {
		entry.AttributeIDs = []string{}
	}

	for i := range data.Journal {
		if data.Journal[i].Date == day {
			entry.ID = data.Journal[i].ID
			entry.XPAwarded = data.Journal[i].XPAwarded
			data.Journal[i] = entry
			return entry, false, nil
		}
	}

	entry.ID = NewID()
	data.Journal = append(data.Journal, entry)
	GrantXP(&data.Profile, entry.XPAwarded)
	for _, id := range entry.AttributeIDs {
		GrantAttributeXP(data.Attributes, id, entry.XPAwarded)
	}
	return entry, true, nil
}

// JournalFor returns the entry for day, if any.
func JournalFor(data *models.UserData, day models.Date) *models.JournalEntry {
	for i := range data.Journal {
		if data.Journal[i].Date == day {
			return &data.Journal[i]
		}
	}
	return nil
}
