package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

type DecisionInput struct {
	Situation    string           `json:"situation"`
	Options      [2]models.Option `json:"options"`
	ChosenOption string           `json:"chosen_option"`
	Reason       string           `json:"reason"`
}

func validPayoff(v int) bool { return v >= 1 && v <= 10 }

// RecordDecision appends a two-option decision. Both options need distinct
// names and payoffs in 1..10, and the chosen option must name one of them.
func RecordDecision(data *models.UserData, in DecisionInput, now time.Time) (models.Decision, error) {
	situation := strings.TrimSpace(in.Situation)
	if situation == "" {
		return models.Decision{}, invalid("situation", "describe the situation")
	}

	opts := in.Options
	for i := range opts {
		opts[i].Name = strings.TrimSpace(opts[i].Name)
		field := fmt.Sprintf("options[%d]", i)
		if opts[i].Name == "" {
			return models.Decision{}, invalid(field, "option must have a name")
		}
		if !validPayoff(opts[i].ShortTermPayoff) || !validPayoff(opts[i].LongTermPayoff) {
			return models.Decision{}, invalid(field, "payoffs must be between 1 and 10")
		}
	}
	if strings.EqualFold(opts[0].Name, opts[1].Name) {
		return models.Decision{}, invalid("options", "the two options need different names")
	}

	chosen := strings.TrimSpace(in.ChosenOption)
	switch {
	case strings.EqualFold(chosen, opts[0].Name):
		chosen = opts[0].Name
	case strings.EqualFold(chosen, opts[1].Name):
		chosen = opts[1].Name
	default:
		return models.Decision{}, invalid("chosen_option", "must be one of the two options")
	}

	d := models.Decision{
		ID:           NewID(),
		Timestamp:    now,
		Situation:    situation,
		Options:      opts,
		ChosenOption: chosen,
		Reason:       strings.TrimSpace(in.Reason),
	}
	data.Decisions = append(data.Decisions, d)
	return d, nil
}

// SetRegret records the later look back on a decision.
func SetRegret(data *models.UserData, id string, regret bool, notes string) (models.Decision, error) {
	for i := range data.Decisions {
		if data.Decisions[i].ID == id {
			r := regret
			data.Decisions[i].RegretCheck = &r
			data.Decisions[i].RegretNotes = strings.TrimSpace(notes)
			return data.Decisions[i], nil
		}
	}
	return models.Decision{}, NotFoundError{Kind: "decision", ID: id}
}

func FindDecision(data *models.UserData, id string) (models.Decision, error) {
	for _, d := range data.Decisions {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Decision{}, NotFoundError{Kind: "decision", ID: id}
}

// Score is the combined payoff of an option.
func Score(o models.Option) int {
	return o.ShortTermPayoff + o.LongTermPayoff
}

// Recommended returns the option with the better long-term payoff, breaking
// ties on the combined score. It returns "" on a full tie.
func Recommended(d models.Decision) string {
	a, b := d.Options[0], d.Options[1]
	switch {
	case a.LongTermPayoff != b.LongTermPayoff:
		if a.LongTermPayoff > b.LongTermPayoff {
			return a.Name
		}
		return b.Name
	case Score(a) != Score(b):
		if Score(a) > Score(b) {
			return a.Name
		}
		return b.Name
	default:
		return ""
	}
}
