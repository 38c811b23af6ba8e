package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/blobstore"
	"github.com/tahcohcat/liferpg-web/internal/game"
	"github.com/tahcohcat/liferpg-web/internal/llm"
	"github.com/tahcohcat/liferpg-web/internal/logger"
	"github.com/tahcohcat/liferpg-web/internal/models"
	"github.com/tahcohcat/liferpg-web/internal/session"
)

// ErrAlreadyCompleted refuses a second completion of a mission on the same
// date. The game core would happily log it twice.
var ErrAlreadyCompleted = errors.New("mission already completed on that date")

// LifeService runs game operations against per-user sessions. Every call
// on a user holds that user's session lock for its whole duration, store
// round-trips included.
type LifeService struct {
	store    blobstore.Store
	cfg      config.GameConfig
	advisor  llm.LLM
	notifier Notifier
	logger   *logger.Log

	// Now is the clock, replaceable in tests.
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session.Session
}

func NewLifeService(store blobstore.Store, cfg config.GameConfig, advisor llm.LLM, notifier Notifier) *LifeService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &LifeService{
		store:    store,
		cfg:      cfg,
		advisor:  advisor,
		notifier: notifier,
		logger:   logger.New(),
		Now:      time.Now,
		sessions: make(map[string]*session.Session),
	}
}

func (s *LifeService) defaults() models.Defaults {
	return models.Defaults{
		XPBasePerLevel: s.cfg.XPBasePerLevel,
		PlayerName:     s.cfg.PlayerName,
		Timezone:       s.cfg.Timezone,
		AutoSave:       s.cfg.AutoSave,
	}
}

// Open provisions the user's namespace and loads a fresh session, replacing
// any session already held for them. Called on login.
func (s *LifeService) Open(ctx context.Context, userID string) error {
	if _, err := session.Provision(ctx, s.store, userID, s.defaults()); err != nil {
		return err
	}
	sess, err := session.Load(ctx, s.store, userID, s.defaults())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()
	s.logger.ForUser(userID).Success("Session opened")
	return nil
}

// Close drops the in-memory session. Unsaved changes are lost.
func (s *LifeService) Close(userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// session returns the user's live session, loading it on first use. The
// load runs outside s.mu so one slow store does not hold up other users;
// if two requests race, the first session stored wins.
func (s *LifeService) session(ctx context.Context, userID string) (*session.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	loaded, err := session.Load(ctx, s.store, userID, s.defaults())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}
	s.sessions[userID] = loaded
	return loaded, nil
}

func (s *LifeService) location(sess *session.Session) *time.Location {
	for _, name := range []string{sess.Data.Settings.Timezone, s.cfg.Timezone} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.Local
}

// day returns d, or today in the player's timezone when d is zero.
func (s *LifeService) day(sess *session.Session, d models.Date) models.Date {
	if !d.IsZero() {
		return d
	}
	return models.DateOf(s.Now().In(s.location(sess)))
}

func (s *LifeService) view(ctx context.Context, userID string, fn func(*session.Session) error) error {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	return fn(sess)
}

// update runs fn under the session lock. fn returns the blobs it changed;
// they are written right away when auto-save is on before or after fn, so
// the change that switches auto-save off is itself saved. Newly earned
// achievements are announced either way.
func (s *LifeService) update(ctx context.Context, userID string, fn func(*session.Session) ([]string, error)) error {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()

	before := game.Achievements(sess.Data)
	autoSave := sess.Data.Settings.AutoSave
	touched, err := fn(sess)
	if err != nil {
		return err
	}
	for _, a := range game.NewlyEarned(before, game.Achievements(sess.Data)) {
		s.notify(userID, EventAchievement, a)
	}
	if len(touched) == 0 || !(autoSave || sess.Data.Settings.AutoSave) {
		return nil
	}
	return s.save(ctx, sess, touched...)
}

func (s *LifeService) save(ctx context.Context, sess *session.Session, names ...string) error {
	log := s.logger.ForUser(sess.UserID)
	if err := sess.SaveMany(ctx, names...); err != nil {
		if blobstore.IsConflict(err) {
			log.WithError(err).Warn("Save rejected, data changed elsewhere")
			s.notify(sess.UserID, EventConflict, map[string]string{"error": err.Error()})
		} else {
			log.WithError(err).Error("Save failed")
		}
		return err
	}
	log.Debugf("Saved %v", names)
	s.notify(sess.UserID, EventSaved, map[string][]string{"blobs": names})
	return nil
}

func (s *LifeService) notify(userID, kind string, data any) {
	s.notifier.Notify(userID, Event{Type: kind, Data: data, Timestamp: s.Now()})
}

func clone[T any](in []T) []T {
	return append([]T{}, in...)
}

// Profile

func (s *LifeService) Profile(ctx context.Context, userID string) (p models.Profile, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		p = sess.Data.Profile
		return nil
	})
	return
}

func (s *LifeService) Summary(ctx context.Context, userID string) (sum game.Summary, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		sum = game.Summarize(sess.Data, s.day(sess, models.Date{}))
		return nil
	})
	return
}

func (s *LifeService) Activity(ctx context.Context, userID string, limit int) (out []game.Activity, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = game.RecentActivity(sess.Data, limit)
		return nil
	})
	return
}

func (s *LifeService) Achievements(ctx context.Context, userID string) (out []game.AchievementView, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = game.Achievements(sess.Data)
		return nil
	})
	return
}

// Missions

func (s *LifeService) Missions(ctx context.Context, userID string) (out []models.Mission, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = clone(sess.Data.Missions)
		return nil
	})
	return
}

func (s *LifeService) AddMission(ctx context.Context, userID string, in game.MissionInput) (m models.Mission, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		m, err = game.AddMission(sess.Data, in, s.day(sess, models.Date{}))
		if err != nil {
			return nil, err
		}
		return []string{models.BlobMissions}, nil
	})
	return
}

func (s *LifeService) RemoveMission(ctx context.Context, userID, missionID string) error {
	return s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		if err := game.RemoveMission(sess.Data, missionID); err != nil {
			return nil, err
		}
		return []string{models.BlobMissions}, nil
	})
}

// DueMissions lists the missions due on day (today when zero) and returns
// the date it resolved.
func (s *LifeService) DueMissions(ctx context.Context, userID string, day models.Date) (d models.Date, out []game.DueMission, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		d = s.day(sess, day)
		out = game.ListDue(sess.Data.Missions, d, sess.Data.MissionLog)
		return nil
	})
	return
}

func (s *LifeService) SearchMissions(ctx context.Context, userID, query string, limit int) (out []models.Mission, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = game.SearchMissions(sess.Data.Missions, query, limit)
		return nil
	})
	return
}

// CompleteMission logs a completion on day (today when zero) and pays it
// out. The mission must be due that day and not completed yet.
func (s *LifeService) CompleteMission(ctx context.Context, userID, missionID string, day models.Date) (res game.CompleteResult, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		d := s.day(sess, day)
		m, err := game.FindMission(sess.Data, missionID)
		if err != nil {
			return nil, err
		}
		if !game.IsActive(m, d) {
			return nil, game.ValidationError{Field: "date", Reason: fmt.Sprintf("%s is not due on %s", m.Name, d)}
		}
		if game.IsCompleted(m, d, sess.Data.MissionLog) {
			return nil, ErrAlreadyCompleted
		}

		res = game.Complete(sess.Data, m, d, s.Now())
		game.TouchStreak(&sess.Data.Profile, d)

		s.notify(userID, EventMissionCompleted, res)
		if res.LevelsGained > 0 {
			s.notify(userID, EventLevelUp, map[string]int{"level": res.LevelAfter, "gained": res.LevelsGained})
			s.logger.ForUser(userID).Successf("Reached level %d", res.LevelAfter)
		}

		touched := []string{models.BlobMissionLog, models.BlobProfile}
		if res.AttributeHit {
			touched = append(touched, models.BlobAttributes)
		}
		return touched, nil
	})
	return
}

// Attributes

func (s *LifeService) Attributes(ctx context.Context, userID string) (out []models.Attribute, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = clone(sess.Data.Attributes)
		return nil
	})
	return
}

func (s *LifeService) AddAttribute(ctx context.Context, userID string, in game.AttributeInput) (a models.Attribute, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		a, err = game.AddAttribute(sess.Data, in)
		if err != nil {
			return nil, err
		}
		return []string{models.BlobAttributes}, nil
	})
	return
}

func (s *LifeService) RemoveAttribute(ctx context.Context, userID, id string) error {
	return s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		if err := game.RemoveAttribute(sess.Data, id); err != nil {
			return nil, err
		}
		return []string{models.BlobAttributes}, nil
	})
}

// Journal

// Journal returns the entries newest day first.
func (s *LifeService) Journal(ctx context.Context, userID string) (out []models.JournalEntry, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = clone(sess.Data.Journal)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
		return nil
	})
	return
}

// WriteJournal upserts the entry for day (today when zero). It reports
// whether the entry is new; only new entries pay XP.
func (s *LifeService) WriteJournal(ctx context.Context, userID string, day models.Date, in game.JournalInput) (e models.JournalEntry, created bool, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		d := s.day(sess, day)
		before := sess.Data.Profile.CurrentLevel
		e, created, err = game.UpsertJournal(sess.Data, d, in, s.Now())
		if err != nil {
			return nil, err
		}
		if !created {
			return []string{models.BlobJournal}, nil
		}
		game.TouchStreak(&sess.Data.Profile, d)
		if after := sess.Data.Profile.CurrentLevel; after > before {
			s.notify(userID, EventLevelUp, map[string]int{"level": after, "gained": after - before})
		}
		return []string{models.BlobJournal, models.BlobProfile, models.BlobAttributes}, nil
	})
	return
}

// Decisions

func (s *LifeService) Decisions(ctx context.Context, userID string) (out []models.Decision, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = clone(sess.Data.Decisions)
		return nil
	})
	return
}

func (s *LifeService) RecordDecision(ctx context.Context, userID string, in game.DecisionInput) (d models.Decision, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		d, err = game.RecordDecision(sess.Data, in, s.Now())
		if err != nil {
			return nil, err
		}
		return []string{models.BlobDecisions}, nil
	})
	return
}

func (s *LifeService) SetRegret(ctx context.Context, userID, id string, regret bool, notes string) (d models.Decision, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		d, err = game.SetRegret(sess.Data, id, regret, notes)
		if err != nil {
			return nil, err
		}
		return []string{models.BlobDecisions}, nil
	})
	return
}

// Calendar

// Calendar returns the events on day, or every event when day is zero.
func (s *LifeService) Calendar(ctx context.Context, userID string, day models.Date) (out []models.CalendarEvent, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		if day.IsZero() {
			out = clone(sess.Data.Calendar)
			return nil
		}
		out = game.EventsOn(sess.Data.Calendar, day)
		return nil
	})
	return
}

func (s *LifeService) AddCalendarEvent(ctx context.Context, userID string, in game.CalendarInput) (ev models.CalendarEvent, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		ev, err = game.AddCalendarEvent(sess.Data, in)
		if err != nil {
			return nil, err
		}
		return []string{models.BlobCalendar}, nil
	})
	return
}

// Reward shop

func (s *LifeService) Rewards(ctx context.Context, userID string) (shop models.RewardShop, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		shop = models.RewardShop{
			Rewards:     clone(sess.Data.Rewards.Rewards),
			Redemptions: clone(sess.Data.Rewards.Redemptions),
		}
		return nil
	})
	return
}

func (s *LifeService) AddReward(ctx context.Context, userID string, in game.RewardInput) (r models.Reward, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		r, err = game.AddReward(sess.Data, in)
		if err != nil {
			return nil, err
		}
		return []string{models.BlobRewards}, nil
	})
	return
}

func (s *LifeService) Redeem(ctx context.Context, userID, rewardID string) (r models.Redemption, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		r, err = game.Redeem(sess.Data, rewardID, s.day(sess, models.Date{}), s.Now())
		if err != nil {
			return nil, err
		}
		s.notify(userID, EventRedeemed, r)
		return []string{models.BlobRewards, models.BlobProfile}, nil
	})
	return
}

// Settings and housekeeping

func (s *LifeService) Settings(ctx context.Context, userID string) (out models.Settings, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		out = sess.Data.Settings
		return nil
	})
	return
}

func validTimezone(name string) bool {
	_, err := time.LoadLocation(name)
	return err == nil
}

func (s *LifeService) UpdateSettings(ctx context.Context, userID string, in game.SettingsInput) (out models.Settings, err error) {
	err = s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		if err := game.ApplySettings(sess.Data, in, validTimezone); err != nil {
			return nil, err
		}
		out = sess.Data.Settings
		touched := []string{models.BlobConfig}
		if in.XPBasePerLevel != nil {
			touched = append(touched, models.BlobProfile)
		}
		return touched, nil
	})
	return
}

// Save writes every blob regardless of the auto-save setting.
func (s *LifeService) Save(ctx context.Context, userID string) error {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	return s.save(ctx, sess, models.BlobNames...)
}

// Reload throws away unsaved changes and re-reads every blob, picking up
// the current version tokens.
func (s *LifeService) Reload(ctx context.Context, userID string) error {
	return s.view(ctx, userID, func(sess *session.Session) error {
		return sess.Reload(ctx)
	})
}

func (s *LifeService) Export(ctx context.Context, userID string) (exp models.Export, err error) {
	err = s.view(ctx, userID, func(sess *session.Session) error {
		exp = sess.Export(s.Now().UTC())
		exp.Attributes = clone(exp.Attributes)
		exp.Missions = clone(exp.Missions)
		exp.Calendar = clone(exp.Calendar)
		exp.Rewards = models.RewardShop{Rewards: clone(exp.Rewards.Rewards), Redemptions: clone(exp.Rewards.Redemptions)}
		exp.MissionLog = clone(exp.MissionLog)
		exp.Journal = clone(exp.Journal)
		exp.Decisions = clone(exp.Decisions)
		return nil
	})
	return
}

// Reset wipes progress and history but keeps the player's setup.
func (s *LifeService) Reset(ctx context.Context, userID string) error {
	return s.update(ctx, userID, func(sess *session.Session) ([]string, error) {
		game.Reset(sess.Data)
		s.logger.ForUser(userID).Warn("Progress reset")
		return []string{
			models.BlobProfile,
			models.BlobAttributes,
			models.BlobMissionLog,
			models.BlobJournal,
			models.BlobDecisions,
		}, nil
	})
}
