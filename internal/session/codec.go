package session

import (
	"fmt"

	"github.com/tahcohcat/liferpg-web/internal/blobstore"
	"github.com/tahcohcat/liferpg-web/internal/models"
)

// Encode renders the part of data stored in blob name.
func Encode(data *models.UserData, name string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch name {
	case models.BlobProfile:
		b, err = blobstore.EncodeDocument(data.Profile)
	case models.BlobConfig:
		b, err = blobstore.EncodeDocument(data.Settings)
	case models.BlobAttributes:
		b, err = blobstore.EncodeDocument(nonNil(data.Attributes))
	case models.BlobMissions:
		b, err = blobstore.EncodeDocument(nonNil(data.Missions))
	case models.BlobCalendar:
		b, err = blobstore.EncodeDocument(nonNil(data.Calendar))
	case models.BlobRewards:
		shop := data.Rewards
		shop.Rewards = nonNil(shop.Rewards)
		shop.Redemptions = nonNil(shop.Redemptions)
		b, err = blobstore.EncodeDocument(shop)
	case models.BlobMissionLog:
		b, err = blobstore.EncodeLines(data.MissionLog)
	case models.BlobJournal:
		b, err = blobstore.EncodeLines(data.Journal)
	case models.BlobDecisions:
		b, err = blobstore.EncodeLines(data.Decisions)
	default:
		return nil, fmt.Errorf("unknown blob %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return b, nil
}

// Decode parses content into the part of data stored in blob name. Profile
// and settings are decoded over what data already holds, so fields missing
// from an older blob keep their defaults.
func Decode(data *models.UserData, name string, content []byte) error {
	var err error
	switch name {
	case models.BlobProfile:
		err = blobstore.DecodeDocument(content, &data.Profile)
	case models.BlobConfig:
		err = blobstore.DecodeDocument(content, &data.Settings)
	case models.BlobAttributes:
		var attrs []models.Attribute
		err = blobstore.DecodeDocument(content, &attrs)
		data.Attributes = nonNil(attrs)
	case models.BlobMissions:
		var missions []models.Mission
		err = blobstore.DecodeDocument(content, &missions)
		data.Missions = nonNil(missions)
	case models.BlobCalendar:
		var events []models.CalendarEvent
		err = blobstore.DecodeDocument(content, &events)
		data.Calendar = nonNil(events)
	case models.BlobRewards:
		var shop models.RewardShop
		err = blobstore.DecodeDocument(content, &shop)
		data.Rewards = models.RewardShop{
			Rewards:     nonNil(shop.Rewards),
			Redemptions: nonNil(shop.Redemptions),
		}
	case models.BlobMissionLog:
		data.MissionLog, err = blobstore.DecodeLines[models.MissionLogEntry](content)
	case models.BlobJournal:
		data.Journal, err = blobstore.DecodeLines[models.JournalEntry](content)
	case models.BlobDecisions:
		data.Decisions, err = blobstore.DecodeLines[models.Decision](content)
	default:
		return fmt.Errorf("unknown blob %q", name)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
