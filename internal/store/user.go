package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"famgrocer/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `uid, name, email, photo_url, family_code, preferences, notification_enabled, created_at, last_login`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var familyCode sql.NullString
	var prefsJSON string
	var notifEnabled int

	err := scanner.Scan(&u.UID, &u.Name, &u.Email, &u.PhotoURL, &familyCode, &prefsJSON, &notifEnabled, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		return nil, err
	}

	if familyCode.Valid {
		u.FamilyCode = &familyCode.String
	}
	u.NotificationEnabled = notifEnabled != 0

	// Missing preference keys fall back to defaults, mirroring the
	// merge-on-load behavior clients expect.
	u.Preferences = model.DefaultPreferences()
	if prefsJSON != "" && prefsJSON != "{}" {
		if err := json.Unmarshal([]byte(prefsJSON), &u.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return &u, nil
}

// Create inserts a user with default preferences and returns the stored
// profile. The uid is assigned here and is opaque to callers.
func (s *UserStore) Create(name, email, passwordHash string) (*model.User, error) {
	uid := uuid.NewString()
	prefs, err := json.Marshal(model.DefaultPreferences())
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO users (uid, name, email, password_hash, preferences, created_at, last_login) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uid, name, email, passwordHash, string(prefs), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByUID(uid)
}

func (s *UserStore) GetByUID(uid string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE uid = ?`, uid)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// PasswordHash returns the stored bcrypt hash for login verification.
func (s *UserStore) PasswordHash(email string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

// ListByFamily returns every member profile of a family; the dispatcher
// fans notifications out across this set.
func (s *UserStore) ListByFamily(familyCode string) ([]model.User, error) {
	rows, err := s.db.Query(`SELECT `+userCols+` FROM users WHERE family_code = ? ORDER BY created_at ASC`, familyCode)
	if err != nil {
		return nil, fmt.Errorf("list users by family: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetFamily points the user at a family, or clears it when code is nil.
func (s *UserStore) SetFamily(uid string, code *string) error {
	_, err := s.db.Exec(`UPDATE users SET family_code = ? WHERE uid = ?`, nullString(code), uid)
	if err != nil {
		return fmt.Errorf("set user family: %w", err)
	}
	return nil
}

func (s *UserStore) UpdateProfile(uid, name, photoURL string) (*model.User, error) {
	_, err := s.db.Exec(`UPDATE users SET name = ?, photo_url = ? WHERE uid = ?`, name, photoURL, uid)
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return s.GetByUID(uid)
}

func (s *UserStore) UpdatePreferences(uid string, prefs model.Preferences) (*model.User, error) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	_, err = s.db.Exec(`UPDATE users SET preferences = ? WHERE uid = ?`, string(data), uid)
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return s.GetByUID(uid)
}

func (s *UserStore) SetNotificationEnabled(uid string, enabled bool) error {
	_, err := s.db.Exec(`UPDATE users SET notification_enabled = ? WHERE uid = ?`, boolInt(enabled), uid)
	if err != nil {
		return fmt.Errorf("set notification enabled: %w", err)
	}
	return nil
}

func (s *UserStore) TouchLastLogin(uid string) error {
	_, err := s.db.Exec(`UPDATE users SET last_login = ? WHERE uid = ?`, time.Now().UTC(), uid)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(uid string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE uid = ?`, uid)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
