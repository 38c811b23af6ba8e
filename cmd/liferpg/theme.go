package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tahcohcat/liferpg-web/internal/game"
	"github.com/tahcohcat/liferpg-web/internal/models"
)

const (
	iconQuest  = "🗺️"
	iconDone   = "✅"
	iconTodo   = "⬜"
	iconTrophy = "🏆"
	iconBolt   = "⚡"
	iconCoin   = "🪙"
	iconFire   = "🔥"
)

var (
	cPrimary = lipgloss.Color("63")
	cAccent  = lipgloss.Color("205")
	cGood    = lipgloss.Color("42")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
)

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	h2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	dim   = lipgloss.NewStyle().Foreground(cMuted)
	panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func heading(icon, text string) string {
	return title.Render(strings.TrimSpace(icon + " " + text))
}

// progressBar draws ratio (0..1) as a fixed-width bar.
func progressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	return good.Render(strings.Repeat("█", filled)) + dim.Render(strings.Repeat("░", width-filled))
}

func renderDue(day models.Date, due []game.DueMission) string {
	var b strings.Builder
	b.WriteString(heading(iconQuest, "Missions for "+day.String()))
	b.WriteString("\n")
	if len(due) == 0 {
		b.WriteString(dim.Render("  nothing scheduled"))
		b.WriteString("\n")
		return b.String()
	}
	for _, d := range due {
		icon := iconTodo
		name := d.Mission.Name
		if d.Completed {
			icon = iconDone
			name = dim.Render(name)
		}
		fmt.Fprintf(&b, "  %s %s %s %s\n", icon, name,
			dim.Render(fmt.Sprintf("[%s]", d.Mission.ID)),
			gold.Render(fmt.Sprintf("+%d XP", d.Mission.BaseXP)))
	}
	return b.String()
}

func renderStatus(sum game.Summary, badges []game.AchievementView) string {
	var lines []string
	lines = append(lines,
		heading(iconBolt, fmt.Sprintf("%s · level %d", sum.PlayerName, sum.Level)),
		fmt.Sprintf("%s %d/%d XP", progressBar(sum.Progress, 20), sum.XP, sum.XPNeeded),
		fmt.Sprintf("%s %d tokens   %s %d day streak", iconCoin, sum.Tokens, iconFire, sum.StreakDays),
		fmt.Sprintf("%s %d/%d missions done on %s", iconDone, sum.CompletedCount, sum.DueCount, sum.Date),
	)

	earned := 0
	for _, a := range badges {
		if a.Completed {
			earned++
		}
	}
	lines = append(lines, "", h2.Render(fmt.Sprintf("%s Achievements %d/%d", iconTrophy, earned, len(badges))))
	for _, a := range badges {
		if a.Completed {
			lines = append(lines, fmt.Sprintf("  %s %s", a.Icon, a.Title))
		}
	}
	return panel.Render(strings.Join(lines, "\n"))
}
