// Package auth signs admins in with Google and guards the admin API.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ignite/assoc-admin/internal/config"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUserInfo represents the user info returned by Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"` // Hosted domain (Workspace domain)
}

// UserInfoFunc fetches the profile behind an OAuth token.
type UserInfoFunc func(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error)

// Manager handles Google OAuth sign-in and cookie sessions.
type Manager struct {
	cfg      config.AuthConfig
	oauth    *oauth2.Config
	store    Store
	userInfo UserInfoFunc
	now      func() time.Time
	log      *logger.Logger
}

// NewManager creates a Manager. Sessions live in store.
func NewManager(cfg config.AuthConfig, baseURL string, store Store) *Manager {
	m := &Manager{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		store: store,
		now:   time.Now,
		log:   logger.Named("auth"),
	}
	m.userInfo = m.fetchUserInfo
	return m
}

// WithUserInfo replaces the profile lookup.
func (m *Manager) WithUserInfo(fn UserInfoFunc) *Manager {
	m.userInfo = fn
	return m
}

// WithEndpoint points the OAuth exchange somewhere other than Google.
func (m *Manager) WithEndpoint(ep oauth2.Endpoint) *Manager {
	m.oauth.Endpoint = ep
	return m
}

func randomID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// sign appends an HMAC of id so a forged cookie never reaches the store.
func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, []byte(m.cfg.SessionSecret))
	mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(value string) (string, bool) {
	id, _, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	return id, hmac.Equal([]byte(m.sign(id)), []byte(value))
}

// HandleLogin starts the Google OAuth flow.
func (m *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomID()
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if m.cfg.AllowedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", m.cfg.AllowedDomain))
	}
	http.Redirect(w, r, m.oauth.AuthCodeURL(state, opts...), http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth flow and sets the session cookie.
func (m *Manager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	fail := func(reason string, err error) {
		m.log.Warn("sign-in failed", "reason", reason, "error", err)
		http.Redirect(w, r, "/?error="+reason, http.StatusTemporaryRedirect)
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		fail("invalid_state", err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if e := r.URL.Query().Get("error"); e != "" {
		fail("provider_error", errors.New(e))
		return
	}

	token, err := m.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		fail("exchange_failed", err)
		return
	}
	info, err := m.userInfo(r.Context(), token)
	if err != nil {
		fail("userinfo_failed", err)
		return
	}
	if !m.Allowed(info) {
		fail("domain_not_allowed", fmt.Errorf("%s", logger.RedactEmail(info.Email)))
		return
	}

	id, err := randomID()
	if err != nil {
		fail("session_failed", err)
		return
	}
	now := m.now()
	s := &Session{
		UserID:    info.ID,
		Email:     info.Email,
		Name:      info.Name,
		Picture:   info.Picture,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(m.cfg.CookieMaxAge) * time.Second),
	}
	if err := m.store.Put(r.Context(), id, s); err != nil {
		fail("session_failed", err)
		return
	}
	m.log.Info("admin signed in", "email", info.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    m.sign(id),
		Path:     "/",
		MaxAge:   m.cfg.CookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Allowed reports whether a Google account may administer the site.
func (m *Manager) Allowed(info *GoogleUserInfo) bool {
	if info == nil || !info.VerifiedEmail {
		return false
	}
	if m.cfg.AllowedDomain == "" {
		return true
	}
	_, domain, ok := strings.Cut(info.Email, "@")
	return ok && strings.EqualFold(domain, m.cfg.AllowedDomain)
}

// HandleLogout ends the session.
func (m *Manager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		if id, ok := m.verify(c.Value); ok {
			if err := m.store.Delete(r.Context(), id); err != nil {
				m.log.Warn("session delete failed", "error", err)
			}
		}
	}
	http.SetCookie(w, &http.Cookie{Name: m.cfg.CookieName, Value: "", Path: "/", MaxAge: -1})
	httputil.Success(w, "Signed out", nil)
}

// HandleMe returns the signed-in admin.
func (m *Manager) HandleMe(w http.ResponseWriter, r *http.Request) {
	s := m.Session(r)
	if s == nil {
		httputil.JSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	httputil.OK(w, map[string]any{"authenticated": true, "user": s})
}

// Session returns the session for r, or nil.
func (m *Manager) Session(r *http.Request) *Session {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil
	}
	id, ok := m.verify(c.Value)
	if !ok {
		return nil
	}
	s, err := m.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.log.Error("session lookup failed", "error", err)
		}
		return nil
	}
	if s.Expired(m.now()) {
		return nil
	}
	return s
}

// RequireAdmin rejects requests without a valid session and puts the
// session on the request context.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Session(r)
		if s == nil {
			httputil.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// LocalAdmin stands in for RequireAdmin when sign-in is disabled.
func LocalAdmin(next http.Handler) http.Handler {
	local := &Session{UserID: "local", Email: "admin@localhost", Name: "Local admin"}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), local)))
	})
}

// RequireBearer guards machine endpoints with a shared token. An empty
// token rejects every request.
func RequireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				httputil.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey struct{}

// WithSession stores s on ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by RequireAdmin, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Actor names the admin behind ctx for audit columns.
func Actor(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Email
	}
	return ""
}

func (m *Manager) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	resp, err := m.oauth.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info: status %d", resp.StatusCode)
	}
	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}
