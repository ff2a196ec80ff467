package auth

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/honiara/homefinder/internal/config"
)

// Session data keys
const (
	SessionKeyUserID = "user_id"
)

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager. sqlDB should be
// the underlying *sql.DB from GORM; pass nil to fall back to the in-memory
// store (degraded mode without a database).
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	sm := scs.New()

	if sqlDB != nil {
		// Create sessions table if it doesn't exist
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	}

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession starts a session for a user after successful
// authentication. The token is renewed to prevent session fixation.
func (sm *SessionManager) CreateSession(r *http.Request, userID uint) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}
	// Stored as int to match GetInt() retrieval
	sm.Put(r.Context(), SessionKeyUserID, int(userID))
	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID retrieves the user ID from the session.
// Returns 0 if not authenticated.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyUserID))
}

// IsAuthenticated returns true if the request has a valid session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != 0
}
