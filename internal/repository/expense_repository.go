package repository

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/models"
)

// ExpenseRepository persists expenses and their fund allocations.
// Allocations live in their own table, appended on allocation and
// deleted by id on removal; they are never updated in place.
type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(e *models.Expense) error {
	query := `
		INSERT INTO expenses (id, amount, description, category, date, vendor, notes,
			receipt_url, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(query,
		e.ID, e.Amount, e.Description, e.Category, e.Date,
		nullString(e.Vendor), nullString(e.Notes), nullString(e.ReceiptURL),
		e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("failed to create expense", err)
	}
	return nil
}

func (r *ExpenseRepository) GetByID(id string) (*models.Expense, error) {
	query := `
		SELECT id, amount, description, category, date, vendor, notes, receipt_url,
			created_by, created_at, updated_at
		FROM expenses WHERE id = $1
	`
	e, err := scanExpense(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Expense not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to get expense", err)
	}
	if err := r.attachAllocations([]*models.Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ExpenseRepository) Update(e *models.Expense) error {
	query := `
		UPDATE expenses
		SET amount = $2, description = $3, category = $4, date = $5,
			vendor = $6, notes = $7, receipt_url = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.db.Exec(query,
		e.ID, e.Amount, e.Description, e.Category, e.Date,
		nullString(e.Vendor), nullString(e.Notes), nullString(e.ReceiptURL),
		e.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("failed to update expense", err)
	}
	return requireRow(result, "Expense not found")
}

func (r *ExpenseRepository) Delete(id string) error {
	// allocations go with the expense via ON DELETE CASCADE
	result, err := r.db.Exec(`DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("failed to delete expense", err)
	}
	return requireRow(result, "Expense not found")
}

// List returns expenses matching the filter, newest first, with their
// allocations attached.
func (r *ExpenseRepository) List(q commands.ListExpensesQuery) ([]*models.Expense, error) {
	query := `
		SELECT id, amount, description, category, date, vendor, notes, receipt_url,
			created_by, created_at, updated_at
		FROM expenses
		WHERE 1=1
	`
	var args []any
	if q.Month != "" {
		start, end, err := monthRange(q.Month)
		if err != nil {
			return nil, apperr.Validation("Invalid month filter, expected YYYY-MM")
		}
		args = append(args, start)
		query += ` AND date >= $` + strconv.Itoa(len(args))
		args = append(args, end)
		query += ` AND date < $` + strconv.Itoa(len(args))
	}
	if q.Category != "" && q.Category != "all" {
		args = append(args, q.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (description ILIKE $` + n + ` OR vendor ILIKE $` + n + `)`
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperr.Internal("failed to list expenses", err)
	}
	defer rows.Close()

	expenses, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachAllocations(expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListByDateRange returns expenses with date in [start, end), oldest
// first, allocations attached. Used by the stats aggregation.
func (r *ExpenseRepository) ListByDateRange(start, end time.Time) ([]*models.Expense, error) {
	query := `
		SELECT id, amount, description, category, date, vendor, notes, receipt_url,
			created_by, created_at, updated_at
		FROM expenses
		WHERE date >= $1 AND date < $2
		ORDER BY date ASC
	`
	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, apperr.Internal("failed to list expenses", err)
	}
	defer rows.Close()

	expenses, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachAllocations(expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Totals sums all expense amounts and all allocation amounts across the
// whole ledger. Feeds the fund overview; recomputed per call.
func (r *ExpenseRepository) Totals() (totalExpenses, allocatedTotal float64, err error) {
	err = r.db.QueryRow(`
		SELECT COALESCE((SELECT SUM(amount) FROM expenses), 0),
			   COALESCE((SELECT SUM(amount) FROM expense_allocations), 0)
	`).Scan(&totalExpenses, &allocatedTotal)
	if err != nil {
		return 0, 0, apperr.Internal("failed to sum expense totals", err)
	}
	return totalExpenses, allocatedTotal, nil
}

// AddAllocation appends one allocation row to the expense.
func (r *ExpenseRepository) AddAllocation(expenseID string, a models.Allocation) error {
	query := `
		INSERT INTO expense_allocations (id, expense_id, amount, allocated_at, allocated_by, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(query, a.ID, expenseID, a.Amount, a.AllocatedAt, a.AllocatedBy, nullString(a.Note))
	if err != nil {
		return apperr.Internal("failed to add allocation", err)
	}
	return nil
}

// RemoveAllocation deletes one allocation by identity.
func (r *ExpenseRepository) RemoveAllocation(expenseID, allocationID string) error {
	result, err := r.db.Exec(
		`DELETE FROM expense_allocations WHERE id = $1 AND expense_id = $2`,
		allocationID, expenseID,
	)
	if err != nil {
		return apperr.Internal("failed to remove allocation", err)
	}
	return requireRow(result, "Allocation not found")
}

func (r *ExpenseRepository) attachAllocations(expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	byID := make(map[string]*models.Expense, len(expenses))
	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		e.Allocations = []models.Allocation{}
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	rows, err := r.db.Query(`
		SELECT id, expense_id, amount, allocated_at, allocated_by, note
		FROM expense_allocations
		WHERE expense_id = ANY($1)
		ORDER BY allocated_at ASC
	`, pq.Array(ids))
	if err != nil {
		return apperr.Internal("failed to load allocations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Allocation
		var expenseID string
		var note sql.NullString
		if err := rows.Scan(&a.ID, &expenseID, &a.Amount, &a.AllocatedAt, &a.AllocatedBy, &note); err != nil {
			return apperr.Internal("failed to scan allocation", err)
		}
		a.Note = note.String
		if e, ok := byID[expenseID]; ok {
			e.Allocations = append(e.Allocations, a)
		}
	}
	if err := rows.Err(); err != nil {
		return apperr.Internal("failed to read allocations", err)
	}
	return nil
}

func (r *ExpenseRepository) scanAll(rows *sql.Rows) ([]*models.Expense, error) {
	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, apperr.Internal("failed to scan expense", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to read expenses", err)
	}
	return expenses, nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	var vendor, notes, receiptURL sql.NullString
	err := row.Scan(
		&e.ID, &e.Amount, &e.Description, &e.Category, &e.Date,
		&vendor, &notes, &receiptURL, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Vendor = vendor.String
	e.Notes = notes.String
	e.ReceiptURL = receiptURL.String
	return &e, nil
}

// monthRange parses "YYYY-MM" into [first of month, first of next month).
func monthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
