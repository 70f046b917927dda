package store

import (
	"database/sql"
	"fmt"
	"time"

	"famgrocer/internal/family"
	"famgrocer/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	err := scanner.Scan(&f.Code, &f.Name, &f.CreatedBy, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const familyCols = `code, name, created_by, created_at`

// Create inserts a new family under a freshly generated code, retrying
// on the (unlikely) chance of a code collision.
func (s *FamilyStore) Create(name, createdBy string) (*model.Family, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := family.GenerateCode()
		if err != nil {
			return nil, err
		}
		_, err = s.db.Exec(
			`INSERT INTO families (code, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
			code, name, createdBy, time.Now().UTC(),
		)
		if err == nil {
			return s.GetByCode(code)
		}
		existing, lookupErr := s.GetByCode(code)
		if lookupErr == nil && existing != nil {
			continue // collision, try a new code
		}
		return nil, fmt.Errorf("insert family: %w", err)
	}
	return nil, fmt.Errorf("insert family: could not find a free code")
}

func (s *FamilyStore) GetByCode(code string) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE code = ?`, code)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) Delete(code string) error {
	_, err := s.db.Exec(`DELETE FROM families WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	return nil
}

// ListMembers returns the users currently pointing at this family,
// ordered by when they joined. An empty result is not an error: a family
// whose last member left still accepts joins.
func (s *FamilyStore) ListMembers(code string) ([]model.Member, error) {
	rows, err := s.db.Query(
		`SELECT uid, name, email, photo_url, created_at FROM users WHERE family_code = ? ORDER BY created_at ASC`,
		code,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.UID, &m.Name, &m.Email, &m.PhotoURL, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
