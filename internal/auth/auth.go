package auth

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/tahcohcat/liferpg-web/internal/logger"
	"github.com/tahcohcat/liferpg-web/internal/models"
	"github.com/tahcohcat/liferpg-web/internal/services"
)

const sessionName = "liferpg-session"

type ctxKey struct{}

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><title>LifeRPG</title></head>
<body>
<h1>LifeRPG</h1>
{{if .Error}}<p style="color:#c0392b">{{.Error}}</p>{{end}}
<form method="post" action="/login">
  <input name="username" placeholder="username" autofocus>
  <input name="password" type="password" placeholder="password">
  <button type="submit">Enter</button>
</form>
</body></html>`))

// Auth guards the app behind a cookie session. OnLogin runs after the
// password check and before the cookie is issued; a failure there fails the
// login.
type Auth struct {
	Store    *sessions.CookieStore
	Users    *services.UserService
	OnLogin  func(ctx context.Context, username string) error
	OnLogout func(username string)
	logger   *logger.Log
}

func New(secret string, users *services.UserService) *Auth {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Auth{Store: store, Users: users, logger: logger.New()}
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		_ = loginPage.Execute(w, nil)
		return
	}

	var req models.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	} else {
		_ = r.ParseForm()
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	user, err := a.Users.AuthenticateUser(&req)
	if err != nil {
		a.logger.Warnf("Failed login for %q", req.Username)
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = loginPage.Execute(w, map[string]string{"Error": "Invalid username or password"})
		return
	}

	if a.OnLogin != nil {
		if err := a.OnLogin(r.Context(), user.Username); err != nil {
			a.logger.ForUser(user.Username).WithError(err).Error("Could not open player data")
			http.Error(w, "Could not load your data, try again later", http.StatusBadGateway)
			return
		}
	}

	session, _ := a.Store.Get(r, sessionName)
	session.Values["username"] = user.Username
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.logger.ForUser(user.Username).Info("Logged in")

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := a.Store.Get(r, sessionName)
	if username, ok := session.Values["username"].(string); ok && a.OnLogout != nil {
		a.OnLogout(username)
	}
	delete(session.Values, "username")
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// AuthMiddleware rejects requests without a valid session and puts the
// username in the request context.
func (a *Auth) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := a.Store.Get(r, sessionName)
		username, ok := session.Values["username"].(string)
		if !ok || username == "" || !a.Users.UsernameExists(username) {
			if wantsJSON(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
	})
}

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// GetUsername returns the logged-in user, "" outside AuthMiddleware.
func GetUsername(r *http.Request) string {
	username, _ := r.Context().Value(ctxKey{}).(string)
	return username
}
