package server

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"codewords/internal/db"

	"gorm.io/gorm"
)

const sessionCookie = "cw_session"

// sessionStore maps bearer tokens to user IDs. With a database connection
// sessions persist across restarts; without one (tests) they live in
// memory.
type sessionStore struct {
	db  *gorm.DB
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]sessionData
}

type sessionData struct {
	UserID    int64
	ExpiresAt time.Time
}

func newSessionStore(conn *gorm.DB, ttl time.Duration) *sessionStore {
	return &sessionStore{
		db:       conn,
		ttl:      ttl,
		sessions: make(map[string]sessionData),
	}
}

// Create issues a fresh token for the user and sets it as a cookie. The
// token is also returned so API clients can send it as a bearer token.
func (s *sessionStore) Create(w http.ResponseWriter, userID int64) (string, error) {
	token := newSessionToken()
	expires := time.Now().UTC().Add(s.ttl)
	if s.db == nil {
		s.mu.Lock()
		s.sessions[token] = sessionData{UserID: userID, ExpiresAt: expires}
		s.mu.Unlock()
	} else {
		record := db.Session{
			ID:        token,
			UserID:    userID,
			ExpiresAt: expires,
		}
		if err := s.db.Create(&record).Error; err != nil {
			return "", err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// UserID resolves the request's session to a user. The token is read from
// the Authorization header first, then the session cookie.
func (s *sessionStore) UserID(r *http.Request) (int64, bool) {
	token := tokenFromRequest(r)
	if token == "" {
		return 0, false
	}
	now := time.Now().UTC()
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		data, ok := s.sessions[token]
		if !ok || data.ExpiresAt.Before(now) {
			return 0, false
		}
		return data.UserID, true
	}
	var record db.Session
	if err := s.db.Where("id = ?", token).First(&record).Error; err != nil {
		return 0, false
	}
	if record.ExpiresAt.Before(now) {
		_ = s.db.Delete(&db.Session{}, "id = ?", token).Error
		return 0, false
	}
	return record.UserID, true
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

func newSessionToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}
