package repository

import (
	"database/sql"
	"fmt"

	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/models"
)

// PaymentRepository persists charges. The submission and confirmation
// sub-records live as nullable columns on the payment row so each
// lifecycle transition stays a single-row write.
type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, amount, description, period, due_date, type, resident_id, status,
	sub_method, sub_date, sub_reference, sub_notes, sub_submitted_at,
	conf_confirmed_at, conf_confirmed_by, conf_admin_notes,
	created_at, updated_at`

func (r *PaymentRepository) Create(p *models.Payment) error {
	query := `
		INSERT INTO payments (id, amount, description, period, due_date, type, resident_id, status,
			sub_method, sub_date, sub_reference, sub_notes, sub_submitted_at,
			conf_confirmed_at, conf_confirmed_by, conf_admin_notes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.Exec(query,
		p.ID, p.Amount, p.Description, p.Period, p.DueDate, p.Type, p.ResidentID, p.Status,
		nullString(p.Submission.Method), p.Submission.Date,
		nullString(p.Submission.Reference), nullString(p.Submission.Notes), p.Submission.SubmittedAt,
		p.Confirmation.ConfirmedAt, nullString(p.Confirmation.ConfirmedBy), nullString(p.Confirmation.AdminNotes),
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("failed to create payment", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(id string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)
	p, err := scanPayment(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to get payment", err)
	}
	return p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	query := `
		UPDATE payments
		SET amount = $2, description = $3, period = $4, due_date = $5, type = $6, status = $7,
			sub_method = $8, sub_date = $9, sub_reference = $10, sub_notes = $11, sub_submitted_at = $12,
			conf_confirmed_at = $13, conf_confirmed_by = $14, conf_admin_notes = $15,
			updated_at = $16
		WHERE id = $1
	`
	result, err := r.db.Exec(query,
		p.ID, p.Amount, p.Description, p.Period, p.DueDate, p.Type, p.Status,
		nullString(p.Submission.Method), p.Submission.Date,
		nullString(p.Submission.Reference), nullString(p.Submission.Notes), p.Submission.SubmittedAt,
		p.Confirmation.ConfirmedAt, nullString(p.Confirmation.ConfirmedBy), nullString(p.Confirmation.AdminNotes),
		p.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("failed to update payment", err)
	}
	return requireRow(result, "Payment not found")
}

func (r *PaymentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("failed to delete payment", err)
	}
	return requireRow(result, "Payment not found")
}

// List returns every charge, newest due date first.
func (r *PaymentRepository) List() ([]*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments ORDER BY due_date DESC`, paymentColumns)
	return r.list(query)
}

// ListByResident returns one resident's charges, newest due date first.
func (r *PaymentRepository) ListByResident(residentID string) ([]*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE resident_id = $1 ORDER BY due_date DESC`, paymentColumns)
	return r.list(query, residentID)
}

// PaidRevenue sums all confirmed charges. This feeds the fund balance
// and is recomputed from rows on every call.
func (r *PaymentRepository) PaidRevenue() (float64, error) {
	var total float64
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'paid'
	`).Scan(&total)
	if err != nil {
		return 0, apperr.Internal("failed to sum paid revenue", err)
	}
	return total, nil
}

func (r *PaymentRepository) list(query string, args ...any) ([]*models.Payment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperr.Internal("failed to list payments", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, apperr.Internal("failed to scan payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to read payments", err)
	}
	return payments, nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var method, reference, notes, confirmedBy, adminNotes sql.NullString
	err := row.Scan(
		&p.ID, &p.Amount, &p.Description, &p.Period, &p.DueDate, &p.Type, &p.ResidentID, &p.Status,
		&method, &p.Submission.Date, &reference, &notes, &p.Submission.SubmittedAt,
		&p.Confirmation.ConfirmedAt, &confirmedBy, &adminNotes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Submission.Method = method.String
	p.Submission.Reference = reference.String
	p.Submission.Notes = notes.String
	p.Confirmation.ConfirmedBy = confirmedBy.String
	p.Confirmation.AdminNotes = adminNotes.String
	return &p, nil
}
