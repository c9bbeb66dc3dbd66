// Package apitest provides an in-process stub of the translation backend's
// HTTP contract for client tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var signingSecret = []byte("apitest-secret")

type user struct {
	password string
	email    string
}

// Entry mirrors one history record as the backend serves it.
type Entry struct {
	ID             int64  `json:"id"`
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang,omitempty"`
	TargetLang     string `json:"target_lang"`
	CreatedAt      string `json:"created_at"`
}

// Counts tracks how many requests reached each endpoint.
type Counts struct {
	Login     int
	Register  int
	Translate int
	History   int
	Delete    int
	Clear     int
}

// Server is a stub translation backend: JWT login, translate with a
// server-side history side effect, and history list/delete/clear.
type Server struct {
	mu      sync.Mutex
	httpSrv *httptest.Server
	users   map[string]user
	tokens  map[string]string
	entries []Entry
	nextID  int64
	counts  Counts

	// TokenTTL bounds issued tokens. Zero means one hour.
	TokenTTL time.Duration
	// TranslateFunc overrides the canned translation output.
	TranslateFunc func(text, targetLang string) (string, error)
}

// NewServer starts the stub. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		users:  map[string]user{},
		tokens: map[string]string{},
		nextID: 1,
	}

	e := echo.New()
	e.HideBanner = true
	e.POST("/login", s.handleLogin)
	e.POST("/register", s.handleRegister)
	e.POST("/translate", s.handleTranslate)
	e.GET("/translations/history", s.handleListHistory)
	e.DELETE("/translations/history/:id", s.handleDeleteEntry)
	e.DELETE("/translations/history", s.handleClearHistory)

	s.httpSrv = httptest.NewServer(e)
	return s
}

func (s *Server) URL() string { return s.httpSrv.URL }

func (s *Server) Close() { s.httpSrv.Close() }

// AddUser seeds an account.
func (s *Server) AddUser(username, password, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(username)] = user{password: password, email: email}
}

// IssueToken mints and registers a token for a user without going through login.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(username)
}

// RevokeAllTokens makes every outstanding token invalid, simulating
// server-side expiry or revocation.
func (s *Server) RevokeAllTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]string{}
}

// SeedHistory replaces the held history with the given entries.
func (s *Server) SeedHistory(entries ...Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry(nil), entries...)
	for _, entry := range entries {
		if entry.ID >= s.nextID {
			s.nextID = entry.ID + 1
		}
	}
}

// Entries returns a copy of the held history, newest first.
func (s *Server) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// RequestCounts reports per-endpoint request totals.
func (s *Server) RequestCounts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func (s *Server) issueTokenLocked(username string) string {
	ttl := s.TokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := jwt.MapClaims{
		"sub": username,
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingSecret)
	if err != nil {
		// Signing with a static HS256 secret cannot fail at runtime.
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	s.tokens[token] = username
	return token
}

func (s *Server) authorize(c echo.Context) bool {
	header := c.Request().Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	s.mu.Lock()
	_, ok := s.tokens[token]
	s.mu.Unlock()
	return ok && token != ""
}

func (s *Server) handleLogin(c echo.Context) error {
	s.mu.Lock()
	s.counts.Login++
	s.mu.Unlock()

	if !strings.HasPrefix(c.Request().Header.Get("Content-Type"), echo.MIMEApplicationForm) {
		return detail(c, http.StatusUnprocessableEntity, "Form body required")
	}

	username := strings.ToLower(c.FormValue("username"))
	password := c.FormValue("password")

	s.mu.Lock()
	defer s.mu.Unlock()
	account, exists := s.users[username]
	if !exists || account.password != password {
		return detail(c, http.StatusUnauthorized, "Incorrect username or password")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"access_token": s.issueTokenLocked(username),
		"token_type":   "bearer",
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	s.mu.Lock()
	s.counts.Register++
	s.mu.Unlock()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "Invalid request body")
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Password == "" {
		return detail(c, http.StatusUnprocessableEntity, "Username and password required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return detail(c, http.StatusBadRequest, "Username already registered")
	}
	s.users[username] = user{password: req.Password, email: req.Email}

	return c.JSON(http.StatusOK, map[string]any{
		"id":       len(s.users),
		"username": username,
	})
}

func (s *Server) handleTranslate(c echo.Context) error {
	s.mu.Lock()
	s.counts.Translate++
	s.mu.Unlock()

	if !s.authorize(c) {
		return detail(c, http.StatusUnauthorized, "Could not validate credentials")
	}

	var req struct {
		Text       string `json:"text"`
		TargetLang string `json:"target_lang"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "Invalid request body")
	}

	var translated string
	if s.TranslateFunc != nil {
		out, err := s.TranslateFunc(req.Text, req.TargetLang)
		if err != nil {
			return detail(c, http.StatusBadGateway, err.Error())
		}
		translated = out
	} else {
		translated = "[" + req.TargetLang + "] " + req.Text
	}

	s.mu.Lock()
	entry := Entry{
		ID:             s.nextID,
		SourceText:     req.Text,
		TranslatedText: translated,
		TargetLang:     req.TargetLang,
		CreatedAt:      time.Now().UTC().Format("2006-01-02T15:04:05"),
	}
	s.nextID++
	s.entries = append([]Entry{entry}, s.entries...)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{"translated_text": translated})
}

func (s *Server) handleListHistory(c echo.Context) error {
	s.mu.Lock()
	s.counts.History++
	s.mu.Unlock()

	if !s.authorize(c) {
		return detail(c, http.StatusUnauthorized, "Could not validate credentials")
	}

	return c.JSON(http.StatusOK, s.Entries())
}

func (s *Server) handleDeleteEntry(c echo.Context) error {
	s.mu.Lock()
	s.counts.Delete++
	s.mu.Unlock()

	if !s.authorize(c) {
		return detail(c, http.StatusUnauthorized, "Could not validate credentials")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "Invalid id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.entries {
		if entry.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return detail(c, http.StatusNotFound, "Translation not found")
}

func (s *Server) handleClearHistory(c echo.Context) error {
	s.mu.Lock()
	s.counts.Clear++
	s.mu.Unlock()

	if !s.authorize(c) {
		return detail(c, http.StatusUnauthorized, "Could not validate credentials")
	}

	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func detail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"detail": message})
}
