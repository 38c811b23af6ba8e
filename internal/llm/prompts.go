package llm

import (
	"fmt"
	"strings"

	"github.com/tahcohcat/liferpg-web/internal/llm/chat"
	"github.com/tahcohcat/liferpg-web/internal/models"
)

const advisorPersona = `You are the quest advisor in a role-playing game the player uses to run
their real life. Answer in plain prose, at most two short paragraphs, warm
but direct. Never invent facts about the player.`

// DecisionPrompt asks for a second opinion on a recorded decision.
func DecisionPrompt(d models.Decision) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Situation: %s\n", d.Situation)
	for i, o := range d.Options {
		fmt.Fprintf(&sb, "Option %d: %s (short-term payoff %d/10, long-term payoff %d/10)\n",
			i+1, o.Name, o.ShortTermPayoff, o.LongTermPayoff)
	}
	fmt.Fprintf(&sb, "Chosen: %s\n", d.ChosenOption)
	if d.Reason != "" {
		fmt.Fprintf(&sb, "Reason given: %s\n", d.Reason)
	}
	if d.RegretCheck != nil {
		fmt.Fprintf(&sb, "Looking back, the player regrets it: %t. %s\n", *d.RegretCheck, d.RegretNotes)
	}
	sb.WriteString("\nWhat should the player weigh, and what would you have picked?")
	return chat.Encode(chat.System(advisorPersona), chat.User(sb.String()))
}

// ReflectionPrompt asks for a short reflection on a journal entry.
func ReflectionPrompt(entry models.JournalEntry, attrs []models.Attribute) string {
	names := make([]string, 0, len(entry.AttributeIDs))
	for _, id := range entry.AttributeIDs {
		if a := models.FindAttribute(attrs, id); a != nil {
			names = append(names, a.Name)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Journal for %s", entry.Date)
	if entry.Mood != "" {
		fmt.Fprintf(&sb, " (mood: %s)", entry.Mood)
	}
	sb.WriteString(":\n")
	sb.WriteString(entry.Text)
	if len(names) > 0 {
		fmt.Fprintf(&sb, "\n\nThe player linked this day to: %s.", strings.Join(names, ", "))
	}
	sb.WriteString("\n\nReflect back what went well and suggest one small quest for tomorrow.")
	return chat.Encode(chat.System(advisorPersona), chat.User(sb.String()))
}
