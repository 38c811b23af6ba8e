package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tahcohcat/liferpg-web/internal/game"
	"github.com/tahcohcat/liferpg-web/internal/llm"
	"github.com/tahcohcat/liferpg-web/internal/models"
	"github.com/tahcohcat/liferpg-web/internal/session"
)

// The model is called outside the session lock so a slow provider does not
// stall the player's other requests.

func (s *LifeService) ask(ctx context.Context, userID, prompt string) (string, error) {
	if s.advisor == nil {
		return "", llm.ErrDisabled
	}
	reply, err := s.advisor.GenerateResponse(ctx, prompt)
	if err != nil {
		s.logger.ForUser(userID).WithError(err).Warn("Advisor call failed")
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// DecisionAdvice asks the advisor about a recorded decision.
func (s *LifeService) DecisionAdvice(ctx context.Context, userID, decisionID string) (string, error) {
	var prompt string
	err := s.view(ctx, userID, func(sess *session.Session) error {
		d, err := game.FindDecision(sess.Data, decisionID)
		if err != nil {
			return err
		}
		prompt = llm.DecisionPrompt(d)
		return nil
	})
	if err != nil {
		return "", err
	}
	return s.ask(ctx, userID, prompt)
}

// JournalReflection asks the advisor to reflect on the entry for day
// (today when zero).
func (s *LifeService) JournalReflection(ctx context.Context, userID string, day models.Date) (string, error) {
	var prompt string
	err := s.view(ctx, userID, func(sess *session.Session) error {
		d := s.day(sess, day)
		entry := game.JournalFor(sess.Data, d)
		if entry == nil {
			return game.NotFoundError{Kind: "journal entry", ID: d.String()}
		}
		prompt = llm.ReflectionPrompt(*entry, sess.Data.Attributes)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("journal reflection: %w", err)
	}
	return s.ask(ctx, userID, prompt)
}
