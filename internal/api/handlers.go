// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/tahcohcat/liferpg-web/internal/auth"
	"github.com/tahcohcat/liferpg-web/internal/blobstore"
	"github.com/tahcohcat/liferpg-web/internal/game"
	"github.com/tahcohcat/liferpg-web/internal/llm"
	"github.com/tahcohcat/liferpg-web/internal/logger"
	"github.com/tahcohcat/liferpg-web/internal/models"
	"github.com/tahcohcat/liferpg-web/internal/services"
)

type Handler struct {
	life   *services.LifeService
	users  *services.UserService
	logger *logger.Log
}

func NewHandler(life *services.LifeService, users *services.UserService) *Handler {
	return &Handler{life: life, users: users, logger: logger.New()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case game.IsValidation(err):
		return http.StatusBadRequest
	case game.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyCompleted), blobstore.IsConflict(err):
		return http.StatusConflict
	case blobstore.IsStoreError(err):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := map[string]string{"error": err.Error()}
	var ve game.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		body["field"] = ve.Field
	}
	if status == http.StatusConflict && blobstore.IsConflict(err) {
		body["hint"] = "your data changed elsewhere, reload before saving again"
	}
	if status >= 500 {
		h.logger.ForUser(auth.GetUsername(r)).WithError(err).Errorf("%s %s failed", r.Method, r.URL.Path)
	}
	writeJSON(w, status, body)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return game.ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	return nil
}

// dateParam reads a YYYY-MM-DD value; "" and "today" give the zero date,
// which the service resolves to the player's today.
func dateParam(raw string) (models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "today" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, game.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", raw)}
	}
	return d, nil
}

func intParam(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}

// GET /api/v1/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.life.Profile(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":   p,
		"xp_needed": game.XPNeededFor(p.CurrentLevel, p.XPBasePerLevel),
		"progress":  game.Progress(p),
	})
}

// GET /api/v1/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.life.Summary(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /api/v1/activity?limit=
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	acts, err := h.life.Activity(r.Context(), auth.GetUsername(r), intParam(r, "limit", 20))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": acts})
}

// GET /api/v1/achievements
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	views, err := h.life.Achievements(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": views})
}

// GET /api/v1/missions
func (h *Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := h.life.Missions(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"missions": missions})
}

// POST /api/v1/missions
func (h *Handler) CreateMission(w http.ResponseWriter, r *http.Request) {
	var in game.MissionInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.life.AddMission(r.Context(), auth.GetUsername(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// DELETE /api/v1/missions/{id}
func (h *Handler) DeleteMission(w http.ResponseWriter, r *http.Request) {
	if err := h.life.RemoveMission(r.Context(), auth.GetUsername(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/missions/due?date=
func (h *Handler) DueMissions(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resolved, due, err := h.life.DueMissions(r.Context(), auth.GetUsername(r), day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": resolved, "missions": due})
}

// GET /api/v1/missions/search?q=&limit=
func (h *Handler) SearchMissions(w http.ResponseWriter, r *http.Request) {
	found, err := h.life.SearchMissions(r.Context(), auth.GetUsername(r), r.URL.Query().Get("q"), intParam(r, "limit", 5))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"missions": found})
}

// POST /api/v1/missions/{id}/complete?date=
func (h *Handler) CompleteMission(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.life.CompleteMission(r.Context(), auth.GetUsername(r), mux.Vars(r)["id"], day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/attributes
func (h *Handler) ListAttributes(w http.ResponseWriter, r *http.Request) {
	attrs, err := h.life.Attributes(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attributes": attrs})
}

// POST /api/v1/attributes
func (h *Handler) CreateAttribute(w http.ResponseWriter, r *http.Request) {
	var in game.AttributeInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	a, err := h.life.AddAttribute(r.Context(), auth.GetUsername(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// DELETE /api/v1/attributes/{id}
func (h *Handler) DeleteAttribute(w http.ResponseWriter, r *http.Request) {
	if err := h.life.RemoveAttribute(r.Context(), auth.GetUsername(r), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/journal
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.life.Journal(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// PUT /api/v1/journal/{date}
func (h *Handler) PutJournal(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(mux.Vars(r)["date"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in game.JournalInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, created, err := h.life.WriteJournal(r.Context(), auth.GetUsername(r), day, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"entry": entry, "created": created})
}

// POST /api/v1/journal/{date}/reflect
func (h *Handler) ReflectJournal(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(mux.Vars(r)["date"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	text, err := h.life.JournalReflection(r.Context(), auth.GetUsername(r), day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reflection": text})
}

// GET /api/v1/decisions
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.life.Decisions(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	type view struct {
		models.Decision
		Recommended string `json:"recommended"`
	}
	out := make([]view, len(decisions))
	for i, d := range decisions {
		out[i] = view{Decision: d, Recommended: game.Recommended(d)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": out})
}

// POST /api/v1/decisions
func (h *Handler) CreateDecision(w http.ResponseWriter, r *http.Request) {
	var in game.DecisionInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.life.RecordDecision(r.Context(), auth.GetUsername(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// POST /api/v1/decisions/{id}/regret
func (h *Handler) RegretDecision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Regret bool   `json:"regret"`
		Notes  string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.life.SetRegret(r.Context(), auth.GetUsername(r), mux.Vars(r)["id"], req.Regret, req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// POST /api/v1/decisions/{id}/advice
func (h *Handler) AdviseDecision(w http.ResponseWriter, r *http.Request) {
	text, err := h.life.DecisionAdvice(r.Context(), auth.GetUsername(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": text})
}

// GET /api/v1/calendar?date=
func (h *Handler) ListCalendar(w http.ResponseWriter, r *http.Request) {
	var day models.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			h.writeError(w, r, game.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"})
			return
		}
		day = d
	}
	events, err := h.life.Calendar(r.Context(), auth.GetUsername(r), day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// POST /api/v1/calendar
func (h *Handler) CreateCalendarEvent(w http.ResponseWriter, r *http.Request) {
	var in game.CalendarInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	ev, err := h.life.AddCalendarEvent(r.Context(), auth.GetUsername(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// GET /api/v1/rewards
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	shop, err := h.life.Rewards(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

// POST /api/v1/rewards
func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	var in game.RewardInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	reward, err := h.life.AddReward(r.Context(), auth.GetUsername(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reward)
}

// POST /api/v1/rewards/{id}/redeem
func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	red, err := h.life.Redeem(r.Context(), auth.GetUsername(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, red)
}

// GET /api/v1/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.life.Settings(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PUT /api/v1/settings
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var in game.SettingsInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	settings, err := h.life.UpdateSettings(r.Context(), auth.GetUsername(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// POST /api/v1/password
// Accounts come from config, so the new password lasts until restart.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.users.ChangePassword(auth.GetUsername(r), req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(w, r, game.ValidationError{Reason: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/sync/save
func (h *Handler) SyncSave(w http.ResponseWriter, r *http.Request) {
	if err := h.life.Save(r.Context(), auth.GetUsername(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// POST /api/v1/sync/load
func (h *Handler) SyncLoad(w http.ResponseWriter, r *http.Request) {
	if err := h.life.Reload(r.Context(), auth.GetUsername(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

// GET /api/v1/export?format=json|yaml
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "yaml" {
		h.writeError(w, r, game.ValidationError{Field: "format", Reason: "must be json or yaml"})
		return
	}

	exp, err := h.life.Export(r.Context(), auth.GetUsername(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("liferpg-%s-%s.%s", exp.UserID, exp.ExportedAt.Format("20060102"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if format == "yaml" {
		out, err := yaml.Marshal(exp)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)
		return
	}
	out, err := blobstore.EncodeDocument(exp)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

// POST /api/v1/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.life.Reset(r.Context(), auth.GetUsername(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func RegisterRoutes(r *mux.Router, life *services.LifeService, users *services.UserService) *Handler {
	h := NewHandler(life, users)

	r.HandleFunc("/pages/{page}", h.GetPage).Methods("GET")
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/summary", h.GetSummary).Methods("GET")
	r.HandleFunc("/activity", h.GetActivity).Methods("GET")
	r.HandleFunc("/achievements", h.GetAchievements).Methods("GET")

	r.HandleFunc("/missions", h.ListMissions).Methods("GET")
	r.HandleFunc("/missions", h.CreateMission).Methods("POST")
	r.HandleFunc("/missions/due", h.DueMissions).Methods("GET")
	r.HandleFunc("/missions/search", h.SearchMissions).Methods("GET")
	r.HandleFunc("/missions/{id}", h.DeleteMission).Methods("DELETE")
	r.HandleFunc("/missions/{id}/complete", h.CompleteMission).Methods("POST")

	r.HandleFunc("/attributes", h.ListAttributes).Methods("GET")
	r.HandleFunc("/attributes", h.CreateAttribute).Methods("POST")
	r.HandleFunc("/attributes/{id}", h.DeleteAttribute).Methods("DELETE")

	r.HandleFunc("/journal", h.ListJournal).Methods("GET")
	r.HandleFunc("/journal/{date}", h.PutJournal).Methods("PUT")
	r.HandleFunc("/journal/{date}/reflect", h.ReflectJournal).Methods("POST")

	r.HandleFunc("/decisions", h.ListDecisions).Methods("GET")
	r.HandleFunc("/decisions", h.CreateDecision).Methods("POST")
	r.HandleFunc("/decisions/{id}/regret", h.RegretDecision).Methods("POST")
	r.HandleFunc("/decisions/{id}/advice", h.AdviseDecision).Methods("POST")

	r.HandleFunc("/calendar", h.ListCalendar).Methods("GET")
	r.HandleFunc("/calendar", h.CreateCalendarEvent).Methods("POST")

	r.HandleFunc("/rewards", h.ListRewards).Methods("GET")
	r.HandleFunc("/rewards", h.CreateReward).Methods("POST")
	r.HandleFunc("/rewards/{id}/redeem", h.RedeemReward).Methods("POST")

	r.HandleFunc("/settings", h.GetSettings).Methods("GET")
	r.HandleFunc("/settings", h.PutSettings).Methods("PUT")
	r.HandleFunc("/password", h.ChangePassword).Methods("POST")

	r.HandleFunc("/sync/save", h.SyncSave).Methods("POST")
	r.HandleFunc("/sync/load", h.SyncLoad).Methods("POST")
	r.HandleFunc("/export", h.Export).Methods("GET")
	r.HandleFunc("/reset", h.Reset).Methods("POST")

	return h
}
