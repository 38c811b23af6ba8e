package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/liferpg-web/internal/auth"
	"github.com/tahcohcat/liferpg-web/internal/game"
	"github.com/tahcohcat/liferpg-web/internal/models"
)

// Page is one screen of the client. Each page is served as a single bundle
// so the client renders it from one request.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageMissions  Page = "missions"
	PageJournal   Page = "journal"
	PageDecisions Page = "decisions"
	PageCalendar  Page = "calendar"
	PageShop      Page = "shop"
	PageSettings  Page = "settings"
)

var Pages = []Page{PageDashboard, PageMissions, PageJournal, PageDecisions, PageCalendar, PageShop, PageSettings}

func ParsePage(s string) (Page, bool) {
	for _, p := range Pages {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

type pageBuilder func(ctx context.Context, user string) (map[string]any, error)

func (h *Handler) builders() map[Page]pageBuilder {
	return map[Page]pageBuilder{
		PageDashboard: h.dashboardPage,
		PageMissions:  h.missionsPage,
		PageJournal:   h.journalPage,
		PageDecisions: h.decisionsPage,
		PageCalendar:  h.calendarPage,
		PageShop:      h.shopPage,
		PageSettings:  h.settingsPage,
	}
}

// GET /api/v1/pages/{page}
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, ok := ParsePage(mux.Vars(r)["page"])
	if !ok {
		h.writeError(w, r, game.NotFoundError{Kind: "page", ID: mux.Vars(r)["page"]})
		return
	}
	body, err := h.builders()[page](r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body["page"] = page
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) dashboardPage(ctx context.Context, user string) (map[string]any, error) {
	sum, err := h.life.Summary(ctx, user)
	if err != nil {
		return nil, err
	}
	_, due, err := h.life.DueMissions(ctx, user, models.Date{})
	if err != nil {
		return nil, err
	}
	acts, err := h.life.Activity(ctx, user, 10)
	if err != nil {
		return nil, err
	}
	badges, err := h.life.Achievements(ctx, user)
	if err != nil {
		return nil, err
	}
	return map[string]any{"summary": sum, "due": due, "activity": acts, "achievements": badges}, nil
}

func (h *Handler) missionsPage(ctx context.Context, user string) (map[string]any, error) {
	missions, err := h.life.Missions(ctx, user)
	if err != nil {
		return nil, err
	}
	day, due, err := h.life.DueMissions(ctx, user, models.Date{})
	if err != nil {
		return nil, err
	}
	attrs, err := h.life.Attributes(ctx, user)
	if err != nil {
		return nil, err
	}
	return map[string]any{"date": day, "missions": missions, "due": due, "attributes": attrs}, nil
}

func (h *Handler) journalPage(ctx context.Context, user string) (map[string]any, error) {
	entries, err := h.life.Journal(ctx, user)
	if err != nil {
		return nil, err
	}
	attrs, err := h.life.Attributes(ctx, user)
	if err != nil {
		return nil, err
	}
	sum, err := h.life.Summary(ctx, user)
	if err != nil {
		return nil, err
	}
	var today *models.JournalEntry
	for i := range entries {
		if entries[i].Date == sum.Date {
			today = &entries[i]
			break
		}
	}
	return map[string]any{"date": sum.Date, "today": today, "entries": entries, "attributes": attrs}, nil
}

func (h *Handler) decisionsPage(ctx context.Context, user string) (map[string]any, error) {
	decisions, err := h.life.Decisions(ctx, user)
	if err != nil {
		return nil, err
	}
	recommended := make(map[string]string, len(decisions))
	for _, d := range decisions {
		recommended[d.ID] = game.Recommended(d)
	}
	return map[string]any{"decisions": decisions, "recommended": recommended}, nil
}

func (h *Handler) calendarPage(ctx context.Context, user string) (map[string]any, error) {
	sum, err := h.life.Summary(ctx, user)
	if err != nil {
		return nil, err
	}
	today, err := h.life.Calendar(ctx, user, sum.Date)
	if err != nil {
		return nil, err
	}
	all, err := h.life.Calendar(ctx, user, models.Date{})
	if err != nil {
		return nil, err
	}
	return map[string]any{"date": sum.Date, "today": today, "events": all}, nil
}

func (h *Handler) shopPage(ctx context.Context, user string) (map[string]any, error) {
	shop, err := h.life.Rewards(ctx, user)
	if err != nil {
		return nil, err
	}
	p, err := h.life.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	return map[string]any{"tokens": p.TotalTokens, "rewards": shop.Rewards, "redemptions": shop.Redemptions}, nil
}

func (h *Handler) settingsPage(ctx context.Context, user string) (map[string]any, error) {
	settings, err := h.life.Settings(ctx, user)
	if err != nil {
		return nil, err
	}
	p, err := h.life.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	return map[string]any{"settings": settings, "xp_base_per_level": p.XPBasePerLevel}, nil
}
