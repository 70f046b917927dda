package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"famgrocer/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemCols = `id, family_code, name, quantity, unit, category, is_urgent, is_recurring, completed,
	added_by, added_by_name, claimed_by, claimed_by_name, claimed_at,
	completed_by, completed_by_name, completed_at, price, store, purchase_date, created_at`

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	var isUrgent, isRecurring, completed int
	var claimedBy, claimedByName, completedBy, completedByName, storeName sql.NullString
	var claimedAt, completedAt, purchaseDate sql.NullTime
	var price sql.NullFloat64

	err := scanner.Scan(
		&it.ID, &it.FamilyCode, &it.Name, &it.Quantity, &it.Unit, &it.Category,
		&isUrgent, &isRecurring, &completed,
		&it.AddedBy, &it.AddedByName, &claimedBy, &claimedByName, &claimedAt,
		&completedBy, &completedByName, &completedAt, &price, &storeName, &purchaseDate,
		&it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.IsUrgent = isUrgent != 0
	it.IsRecurring = isRecurring != 0
	it.Completed = completed != 0
	if claimedBy.Valid {
		it.ClaimedBy = &claimedBy.String
	}
	if claimedByName.Valid {
		it.ClaimedByName = &claimedByName.String
	}
	if claimedAt.Valid {
		it.ClaimedAt = &claimedAt.Time
	}
	if completedBy.Valid {
		it.CompletedBy = &completedBy.String
	}
	if completedByName.Valid {
		it.CompletedByName = &completedByName.String
	}
	if completedAt.Valid {
		it.CompletedAt = &completedAt.Time
	}
	if price.Valid {
		it.Price = &price.Float64
	}
	if storeName.Valid {
		it.Store = &storeName.String
	}
	if purchaseDate.Valid {
		it.PurchaseDate = &purchaseDate.Time
	}
	return &it, nil
}

// CreateItem inserts a new item and assigns its id and creation timestamp.
func (s *ItemStore) CreateItem(familyCode, name string, quantity float64, unit, category string, isUrgent, isRecurring bool, addedBy, addedByName string) (*model.Item, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO items (id, family_code, name, quantity, unit, category, is_urgent, is_recurring, added_by, added_by_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, familyCode, name, quantity, unit, category, boolInt(isUrgent), boolInt(isRecurring), addedBy, addedByName, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ItemStore) GetItemByID(id string) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// ListByFamily returns the full current item set for a family, newest
// first. This is the authoritative snapshot delivered to subscribers.
func (s *ItemStore) ListByFamily(familyCode string) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM items WHERE family_code = ? ORDER BY created_at DESC`,
		familyCode,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// ListByAddedBy returns the items one user added, for export and account
// deletion.
func (s *ItemStore) ListByAddedBy(familyCode, uid string) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM items WHERE family_code = ? AND added_by = ? ORDER BY created_at DESC`,
		familyCode, uid,
	)
	if err != nil {
		return nil, fmt.Errorf("list items by adder: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateItem replaces the editable fields. Actor and purchase fields are
// untouched; omitted fields keep the partial-update contract at the
// handler layer.
func (s *ItemStore) UpdateItem(id, name string, quantity float64, unit, category string, isUrgent, isRecurring bool) (*model.Item, error) {
	_, err := s.db.Exec(
		`UPDATE items SET name = ?, quantity = ?, unit = ?, category = ?, is_urgent = ?, is_recurring = ? WHERE id = ?`,
		name, quantity, unit, category, boolInt(isUrgent), boolInt(isRecurring), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ItemStore) DeleteItem(id string) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Claim reserves the item for one member. A claim over an existing claim
// is last-write-wins, matching the unsynchronized field-update model.
func (s *ItemStore) Claim(id, uid, name string) (*model.Item, error) {
	_, err := s.db.Exec(
		`UPDATE items SET claimed_by = ?, claimed_by_name = ?, claimed_at = ? WHERE id = ?`,
		uid, name, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("claim item: %w", err)
	}
	return s.GetItemByID(id)
}

// Unclaim clears the reservation fields.
func (s *ItemStore) Unclaim(id string) (*model.Item, error) {
	_, err := s.db.Exec(
		`UPDATE items SET claimed_by = NULL, claimed_by_name = NULL, claimed_at = NULL WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("unclaim item: %w", err)
	}
	return s.GetItemByID(id)
}

// Complete marks the item purchased. Price, store and purchase date are
// optional; when price is nil the item joins the unpriced queue.
func (s *ItemStore) Complete(id, uid, name string, price *float64, storeName *string, purchaseDate *time.Time) (*model.Item, error) {
	now := time.Now().UTC()
	pd := purchaseDate
	if price != nil && pd == nil {
		pd = &now
	}
	_, err := s.db.Exec(
		`UPDATE items SET completed = 1, completed_by = ?, completed_by_name = ?, completed_at = ?, price = ?, store = ?, purchase_date = ? WHERE id = ?`,
		uid, name, now, nullFloat(price), nullString(storeName), nullTime(pd), id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete item: %w", err)
	}
	return s.GetItemByID(id)
}

// Uncomplete reverts a purchase, clearing the actor and purchase fields.
func (s *ItemStore) Uncomplete(id string) (*model.Item, error) {
	_, err := s.db.Exec(
		`UPDATE items SET completed = 0, completed_by = NULL, completed_by_name = NULL, completed_at = NULL, price = NULL, store = NULL, purchase_date = NULL WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("uncomplete item: %w", err)
	}
	return s.GetItemByID(id)
}

// SetPrice records a retroactive purchase price. The three purchase
// fields are always written together.
func (s *ItemStore) SetPrice(id string, price float64, storeName string, purchaseDate time.Time) (*model.Item, error) {
	_, err := s.db.Exec(
		`UPDATE items SET price = ?, store = ?, purchase_date = ? WHERE id = ?`,
		price, storeName, purchaseDate.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set item price: %w", err)
	}
	return s.GetItemByID(id)
}

// ClearCompleted deletes every completed item in the family in a single
// transaction and returns the ids removed.
func (s *ItemStore) ClearCompleted(familyCode string) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id FROM items WHERE family_code = ? AND completed = 1`, familyCode)
	if err != nil {
		return nil, fmt.Errorf("select completed: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan completed id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM items WHERE family_code = ? AND completed = 1`, familyCode); err != nil {
		return nil, fmt.Errorf("clear completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

// DeleteByAddedBy removes every item one user added, in a single
// transaction, and returns how many were removed. Used by account
// deletion.
func (s *ItemStore) DeleteByAddedBy(familyCode, uid string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM items WHERE family_code = ? AND added_by = ?`, familyCode, uid)
	if err != nil {
		return 0, fmt.Errorf("delete items by adder: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
