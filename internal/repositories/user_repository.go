package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/config"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, name, email, phone, password_hash, role, status, created_at, updated_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	var exists int
	err := r.db().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email=?`, u.Email).Scan(&exists)
	if err != nil {
		return 0, domain.DependencyError{Op: "check user", Err: err}
	}
	if exists > 0 {
		return 0, domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}

	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'active', NOW(), NOW())`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role,
	)
	if err != nil {
		return 0, domain.DependencyError{Op: "create user", Err: err}
	}
	return res.LastInsertId()
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, domain.DependencyError{Op: "get user", Err: err}
	}
	return u, nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.db().QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, strings.TrimSpace(email))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, domain.DependencyError{Op: "get user", Err: err}
	}
	return u, nil
}

func (r UserRepository) List(ctx context.Context, page, size int) ([]models.User, int, error) {
	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, domain.DependencyError{Op: "count users", Err: err}
	}

	p := domainPage(page, size)
	rows, err := r.db().QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id DESC LIMIT ? OFFSET ?`,
		p.PageSize, p.Offset(),
	)
	if err != nil {
		return nil, 0, domain.DependencyError{Op: "list users", Err: err}
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return out, total, domain.DependencyError{Op: "scan user", Err: err}
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// SetStatus flips a user between active and banned.
func (r UserRepository) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db().ExecContext(ctx,
		`UPDATE users SET status=?, updated_at=NOW() WHERE id=?`, status, id)
	if err != nil {
		return domain.DependencyError{Op: "set user status", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, domain.DependencyError{Op: "count users", Err: err}
	}
	return n, nil
}
