// Package session owns authentication state: decoding identity claims
// from the backend's JWT and persisting the logged-in session across
// process runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The backend issues .NET-style claim URIs.
const (
	claimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimRole           = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

// Roles the backend issues.
const (
	RoleSupervisor = "Supervisor"
	RoleWorker     = "Worker"
)

// ErrMalformedToken marks a token whose identity claims cannot be
// read.
var ErrMalformedToken = errors.New("malformed token")

// Session is the persisted login state.
type Session struct {
	AuthToken string `json:"authToken"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
}

// LoggedIn reports whether a usable session exists.
func (s Session) LoggedIn() bool {
	return s.AuthToken != "" && s.UserID != ""
}

// Claims extracts the identity fields from a token WITHOUT verifying
// its signature. The backend is the sole verifier; the client only
// reads who the token says it belongs to.
func Claims(token string) (userID, role string, err error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("%w: unexpected claims shape", ErrMalformedToken)
	}
	userID, _ = claims[claimNameIdentifier].(string)
	role, _ = claims[claimRole].(string)
	if userID == "" {
		return "", "", fmt.Errorf("%w: missing user identifier claim", ErrMalformedToken)
	}
	return userID, role, nil
}

// FromToken builds a session from a freshly issued token.
func FromToken(token string) (Session, error) {
	userID, role, err := Claims(token)
	if err != nil {
		return Session{}, err
	}
	if role != RoleSupervisor && role != RoleWorker {
		return Session{}, fmt.Errorf("%w: unknown role %q", ErrMalformedToken, role)
	}
	return Session{AuthToken: token, UserID: userID, Role: role}, nil
}

// AuthHeader returns the headers an authenticated request carries.
// Empty sessions get no Authorization entry.
func (s Session) AuthHeader() map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	if s.AuthToken != "" {
		headers["Authorization"] = "Bearer " + s.AuthToken
	}
	return headers
}

// Expired reports whether the token's exp claim is in the past. A
// token without an exp claim is treated as live; the backend's 401 is
// the authority either way.
func (s Session) Expired(now time.Time) bool {
	if s.AuthToken == "" {
		return true
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(s.AuthToken, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// Store persists one session as a JSON file.
type Store struct {
	Path string
}

// DefaultPath is ~/.twintrack/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".twintrack", "session.json"), nil
}

// Load reads the persisted session. A missing file is an empty
// session, not an error.
func (st Store) Load() (Session, error) {
	raw, err := os.ReadFile(st.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt file means logged out, same as missing.
		return Session{}, nil
	}
	return s, nil
}

// Save writes the session with owner-only permissions.
func (st Store) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(st.Path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(st.Path, raw, 0o600)
}

// Clear removes the persisted session. Clearing an absent session is
// a no-op.
func (st Store) Clear() error {
	err := os.Remove(st.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
