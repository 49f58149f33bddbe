package repositories

import (
	"context"
	"database/sql"
	"strings"

	intconfig "github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/config"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
)

type LocationRepository struct {
	DB *sql.DB
}

func (r LocationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Search powers the origin/destination autocomplete.
func (r LocationRepository) Search(ctx context.Context, q string, limit int) ([]models.Location, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	q = strings.TrimSpace(q)

	query := `SELECT id, name, district, division FROM locations`
	args := []any{}
	if q != "" {
		query += ` WHERE name LIKE ? OR district LIKE ?`
		args = append(args, q+"%", q+"%")
	}
	query += ` ORDER BY name ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.DependencyError{Op: "search locations", Err: err}
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.District, &loc.Division); err != nil {
			return out, domain.DependencyError{Op: "scan location", Err: err}
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}
