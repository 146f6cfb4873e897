package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/models"
)

// UserRepository persists accounts against the PostgreSQL store.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, phone, apartment_number,
	monthly_charge, status, is_active, approved_by, approved_at, rejected_at,
	created_at, updated_at`

func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, phone, apartment_number,
			monthly_charge, status, is_active, approved_by, approved_at, rejected_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		nullString(user.Phone), nullString(user.ApartmentNumber),
		user.MonthlyCharge, nullString(user.Status), user.IsActive,
		nullString(user.ApprovedBy), user.ApprovedAt, user.RejectedAt,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperr.Conflict("Email or apartment already in use")
		}
		return apperr.Internal("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByEmail returns the account regardless of activation state; the
// login path needs inactive accounts to distinguish pending approval
// from bad credentials.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanOne(r.db.QueryRow(query, email))
}

func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, phone = $4, apartment_number = $5,
			monthly_charge = $6, status = $7, is_active = $8,
			approved_by = $9, approved_at = $10, rejected_at = $11, updated_at = $12
		WHERE id = $1
	`
	result, err := r.db.Exec(query,
		user.ID, user.Name, user.Email,
		nullString(user.Phone), nullString(user.ApartmentNumber),
		user.MonthlyCharge, nullString(user.Status), user.IsActive,
		nullString(user.ApprovedBy), user.ApprovedAt, user.RejectedAt, user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperr.Conflict("Email or apartment already in use")
		}
		return apperr.Internal("failed to update user", err)
	}
	return requireRow(result, "User not found")
}

func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("failed to delete user", err)
	}
	return requireRow(result, "User not found")
}

// ListAll returns every non-rejected account, newest first.
func (r *UserRepository) ListAll() ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE rejected_at IS NULL ORDER BY created_at DESC`, userColumns)
	return r.list(query)
}

// ListPending returns accounts still waiting on the approval gate.
func (r *UserRepository) ListPending() ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users
		WHERE is_active = false AND rejected_at IS NULL
		ORDER BY created_at DESC`, userColumns)
	return r.list(query)
}

// ListResidents returns active non-admin accounts sorted by apartment.
func (r *UserRepository) ListResidents() ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users
		WHERE role <> 'admin' AND is_active = true
		ORDER BY apartment_number ASC`, userColumns)
	return r.list(query)
}

// ListActiveResidentsByIDs resolves an explicit charge target list to
// the active non-admin accounts among it.
func (r *UserRepository) ListActiveResidentsByIDs(ids []string) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users
		WHERE id = ANY($1) AND role <> 'admin' AND is_active = true
		ORDER BY apartment_number ASC`, userColumns)
	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ApartmentOccupant returns the name of the active user occupying the
// apartment, excluding excludeID. Empty string means the apartment is
// free.
func (r *UserRepository) ApartmentOccupant(apartment, excludeID string) (string, error) {
	var name string
	err := r.db.QueryRow(`
		SELECT name FROM users
		WHERE apartment_number = $1 AND id <> $2 AND is_active = true
	`, apartment, excludeID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", apperr.Internal("failed to check apartment", err)
	}
	return name, nil
}

// Stats aggregates the whole account population, rejected included.
func (r *UserRepository) Stats() (*models.UserStats, error) {
	stats := &models.UserStats{}
	err := r.db.QueryRow(`
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active AND rejected_at IS NULL),
			COUNT(*) FILTER (WHERE role = 'admin'),
			COUNT(*) FILTER (WHERE role = 'tenant'),
			COUNT(*) FILTER (WHERE status = 'owner'),
			COALESCE(SUM(monthly_charge), 0),
			COALESCE(AVG(monthly_charge), 0)
		FROM users
	`).Scan(
		&stats.TotalUsers, &stats.ActiveUsers, &stats.PendingUsers,
		&stats.TotalAdmins, &stats.TotalTenants, &stats.TotalOwners,
		&stats.TotalMonthlyCharges, &stats.AverageMonthlyCharge,
	)
	if err != nil {
		return nil, apperr.Internal("failed to aggregate user stats", err)
	}
	return stats, nil
}

func (r *UserRepository) list(query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *UserRepository) scanAll(rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Internal("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to read users", err)
	}
	return users, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to get user", err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var phone, apartment, status, approvedBy sql.NullString
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&phone, &apartment, &user.MonthlyCharge, &status, &user.IsActive,
		&approvedBy, &user.ApprovedAt, &user.RejectedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Phone = phone.String
	user.ApartmentNumber = apartment.String
	user.Status = status.String
	user.ApprovedBy = approvedBy.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireRow(result sql.Result, notFoundMsg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Internal("failed to check rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}
