package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/auth"
	"github.com/tahcohcat/liferpg-web/internal/blobstore"
	"github.com/tahcohcat/liferpg-web/internal/models"
	"github.com/tahcohcat/liferpg-web/internal/services"
)

type testAPI struct {
	router http.Handler
	store  *blobstore.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := blobstore.NewMemoryStore()
	life := services.NewLifeService(store, config.GameConfig{
		XPBasePerLevel: 100,
		Timezone:       "UTC",
		AutoSave:       true,
		PlayerName:     "Ada",
	}, nil, nil)
	life.Now = func() time.Time { return time.Date(2025, time.June, 4, 10, 0, 0, 0, time.UTC) }
	if err := life.Open(context.Background(), "ada"); err != nil {
		t.Fatal(err)
	}
	users, err := services.NewUserService(map[string]string{"ada": "lovelace"})
	if err != nil {
		t.Fatal(err)
	}

	r := mux.NewRouter()
	RegisterRoutes(r.PathPrefix("/api/v1").Subrouter(), life, users)
	asAda := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.ServeHTTP(w, req.WithContext(auth.WithUsername(req.Context(), "ada")))
	})
	return &testAPI{router: asAda, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestMissionLifecycle(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v1/missions",
		`{"name":"Read","type":"daily","base_xp":150,"tokens_reward":3,"attribute_id":"intelligence"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}
	var m models.Mission
	decodeBody(t, rec, &m)

	rec = a.do(t, http.MethodGet, "/api/v1/missions/due?date=2025-06-04", "")
	var due struct {
		Date     models.Date `json:"date"`
		Missions []struct {
			Mission   models.Mission `json:"mission"`
			Completed bool           `json:"completed"`
		} `json:"missions"`
	}
	decodeBody(t, rec, &due)
	if len(due.Missions) != 1 || due.Missions[0].Completed {
		t.Fatalf("due=%+v", due)
	}

	rec = a.do(t, http.MethodPost, "/api/v1/missions/"+m.ID+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status=%d body=%s", rec.Code, rec.Body)
	}

	rec = a.do(t, http.MethodPost, "/api/v1/missions/"+m.ID+"/complete?date=today", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second complete status=%d", rec.Code)
	}

	rec = a.do(t, http.MethodGet, "/api/v1/profile", "")
	var profile struct {
		Profile  models.Profile `json:"profile"`
		XPNeeded int            `json:"xp_needed"`
	}
	decodeBody(t, rec, &profile)
	if profile.Profile.CurrentLevel != 2 || profile.Profile.CurrentXP != 50 || profile.Profile.TotalTokens != 3 {
		t.Fatalf("profile=%+v", profile.Profile)
	}
	if profile.XPNeeded != 200 {
		t.Fatalf("xp_needed=%d", profile.XPNeeded)
	}

	rec = a.do(t, http.MethodDelete, "/api/v1/missions/"+m.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	a := newTestAPI(t)
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad date", http.MethodGet, "/api/v1/missions/due?date=06/04/2025", "", http.StatusBadRequest},
		{"unknown mission", http.MethodPost, "/api/v1/missions/nope/complete", "", http.StatusNotFound},
		{"invalid mission", http.MethodPost, "/api/v1/missions", `{"name":"","type":"daily"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/rewards", `{`, http.StatusBadRequest},
		{"poor redeem", http.MethodPost, "/api/v1/rewards/movie-night/redeem", "", http.StatusBadRequest},
		{"reflect without entry", http.MethodPost, "/api/v1/journal/2025-06-04/reflect", "", http.StatusNotFound},
		{"unknown page", http.MethodGet, "/api/v1/pages/inventory", "", http.StatusNotFound},
		{"bad export format", http.MethodGet, "/api/v1/export?format=xml", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := a.do(t, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status=%d, want %d, body=%s", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestStaleWriteIsConflict(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()

	blob, err := a.store.Read(ctx, "ada", models.BlobConfig)
	if err != nil || blob == nil {
		t.Fatalf("read config: %v", err)
	}
	if _, err := a.store.Write(ctx, "ada", models.BlobConfig, blob.Content, blob.Version); err != nil {
		t.Fatal(err)
	}

	rec := a.do(t, http.MethodPut, "/api/v1/settings", `{"player_name":"Countess"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}

	if rec := a.do(t, http.MethodPost, "/api/v1/sync/load", ""); rec.Code != http.StatusOK {
		t.Fatalf("reload status=%d", rec.Code)
	}
	if rec := a.do(t, http.MethodPut, "/api/v1/settings", `{"player_name":"Countess"}`); rec.Code != http.StatusOK {
		t.Fatalf("after reload status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestJournalUpsert(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPut, "/api/v1/journal/2025-06-04", `{"text":"Good day","mood":"calm"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first write status=%d body=%s", rec.Code, rec.Body)
	}
	rec = a.do(t, http.MethodPut, "/api/v1/journal/2025-06-04", `{"text":"Great day","mood":"happy"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rewrite status=%d", rec.Code)
	}

	rec = a.do(t, http.MethodGet, "/api/v1/journal", "")
	var out struct {
		Entries []models.JournalEntry `json:"entries"`
	}
	decodeBody(t, rec, &out)
	if len(out.Entries) != 1 || out.Entries[0].Text != "Great day" {
		t.Fatalf("entries=%+v", out.Entries)
	}

	if rec := a.do(t, http.MethodPost, "/api/v1/journal/today/reflect", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("reflect with advisor off status=%d", rec.Code)
	}
}

func TestExportFormats(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/v1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "liferpg-ada-") || !strings.Contains(cd, ".json") {
		t.Fatalf("content-disposition=%q", cd)
	}
	var exp map[string]any
	decodeBody(t, rec, &exp)
	if exp["user_id"] != "ada" || exp["profile"] == nil {
		t.Fatalf("export keys=%v", exp)
	}

	rec = a.do(t, http.MethodGet, "/api/v1/export?format=yaml", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/yaml" {
		t.Fatalf("status=%d type=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if body := rec.Body.String(); !strings.Contains(body, "user_id: ada") || !strings.Contains(body, "current_level: 1") {
		t.Fatalf("yaml export:\n%s", body)
	}
}

func TestPagesServeBundles(t *testing.T) {
	a := newTestAPI(t)
	for _, p := range Pages {
		rec := a.do(t, http.MethodGet, "/api/v1/pages/"+string(p), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", p, rec.Code, rec.Body)
		}
		var body map[string]any
		decodeBody(t, rec, &body)
		if body["page"] != string(p) {
			t.Fatalf("%s page=%v", p, body["page"])
		}
	}
}
