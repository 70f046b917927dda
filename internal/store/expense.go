package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"famgrocer/internal/model"
)

type ExpenseStore struct {
	db *sql.DB
}

func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

const expenseCols = `id, family_code, type, amount, due_date, payment_date, paid, is_recurring, month, created_by, created_at`

func scanExpense(scanner interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	var paymentDate sql.NullTime
	var paid, recurring int

	err := scanner.Scan(&e.ID, &e.FamilyCode, &e.Type, &e.Amount, &e.DueDate, &paymentDate, &paid, &recurring, &e.Month, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Paid = paid != 0
	e.IsRecurring = recurring != 0
	if paymentDate.Valid {
		e.PaymentDate = &paymentDate.Time
	}
	return &e, nil
}

func (s *ExpenseStore) Create(familyCode, expType string, amount float64, dueDate time.Time, isRecurring bool, createdBy string) (*model.Expense, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO expenses (id, family_code, type, amount, due_date, is_recurring, month, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, familyCode, expType, amount, dueDate.UTC(), boolInt(isRecurring), model.MonthBucket(dueDate), createdBy, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return s.GetByID(id)
}

func (s *ExpenseStore) GetByID(id string) (*model.Expense, error) {
	row := s.db.QueryRow(`SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListByFamily returns family expenses, optionally filtered to one
// "YYYY-MM" month bucket, due soonest first.
func (s *ExpenseStore) ListByFamily(familyCode, month string) ([]model.Expense, error) {
	query := `SELECT ` + expenseCols + ` FROM expenses WHERE family_code = ?`
	args := []any{familyCode}
	if month != "" {
		query += ` AND month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY due_date ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (s *ExpenseStore) Update(id, expType string, amount float64, dueDate time.Time, isRecurring bool) (*model.Expense, error) {
	_, err := s.db.Exec(
		`UPDATE expenses SET type = ?, amount = ?, due_date = ?, is_recurring = ?, month = ? WHERE id = ?`,
		expType, amount, dueDate.UTC(), boolInt(isRecurring), model.MonthBucket(dueDate), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return s.GetByID(id)
}

// MarkPaid records the payment. A recurring expense also rolls a fresh
// unpaid copy into the following month.
func (s *ExpenseStore) MarkPaid(id string) (*model.Expense, error) {
	e, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`UPDATE expenses SET paid = 1, payment_date = ? WHERE id = ?`, now, id)
	if err != nil {
		return nil, fmt.Errorf("mark expense paid: %w", err)
	}

	if e.IsRecurring {
		next := e.DueDate.AddDate(0, 1, 0)
		if _, err := s.Create(e.FamilyCode, e.Type, e.Amount, next, true, e.CreatedBy); err != nil {
			return nil, fmt.Errorf("roll recurring expense: %w", err)
		}
	}
	return s.GetByID(id)
}

func (s *ExpenseStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}
