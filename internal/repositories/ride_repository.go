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

type RideRepository struct {
	DB *sql.DB
}

func (r RideRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const rideColumns = `id, driver_id, route_from, route_to,
	DATE_FORMAT(journey_date, '%Y-%m-%d'),
	COALESCE(DATE_FORMAT(return_date, '%Y-%m-%d'), ''),
	category, price_per_seat, vehicle_model,
	total_seats, available_seats, status, image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (models.Ride, error) {
	var ride models.Ride
	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.RouteFrom,
		&ride.RouteTo,
		&ride.JourneyDate,
		&ride.ReturnDate,
		&ride.Category,
		&ride.PricePerSeat,
		&ride.VehicleModel,
		&ride.TotalSeats,
		&ride.AvailableSeats,
		&ride.Status,
		&ride.ImageURL,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	return ride, err
}

func (r RideRepository) Create(ctx context.Context, ride *models.Ride) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO rides
			(driver_id, route_from, route_to, journey_date, return_date,
			 category, price_per_seat, vehicle_model, total_seats, available_seats,
			 status, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		ride.DriverID,
		ride.RouteFrom,
		ride.RouteTo,
		ride.JourneyDate,
		nullIfEmpty(ride.ReturnDate),
		ride.Category,
		ride.PricePerSeat,
		ride.VehicleModel,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.Status,
		ride.ImageURL,
	)
	if err != nil {
		return 0, domain.DependencyError{Op: "create ride", Err: err}
	}
	return res.LastInsertId()
}

func (r RideRepository) GetByID(ctx context.Context, id int64) (models.Ride, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=? LIMIT 1`, id)
	ride, err := scanRide(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ride{}, domain.NotFoundError{Resource: "ride"}
		}
		return models.Ride{}, domain.DependencyError{Op: "get ride", Err: err}
	}
	return ride, nil
}

// Search lists rides with optional filters and pagination.
func (r RideRepository) Search(ctx context.Context, f models.RideFilter) ([]models.Ride, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if f.From != "" {
		where = append(where, "route_from LIKE ?")
		args = append(args, "%"+f.From+"%")
	}
	if f.To != "" {
		where = append(where, "route_to LIKE ?")
		args = append(args, "%"+f.To+"%")
	}
	if f.Date != "" {
		where = append(where, "journey_date = ?")
		args = append(args, f.Date)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.DriverID > 0 {
		where = append(where, "driver_id = ?")
		args = append(args, f.DriverID)
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM rides WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, domain.DependencyError{Op: "count rides", Err: err}
	}

	p := domainPage(f.Page, f.PageSize)
	query := `SELECT ` + rideColumns + ` FROM rides WHERE ` + cond +
		` ORDER BY journey_date ASC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db().QueryContext(ctx, query, append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, domain.DependencyError{Op: "search rides", Err: err}
	}
	defer rows.Close()

	out := []models.Ride{}
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return out, total, domain.DependencyError{Op: "scan ride", Err: err}
		}
		out = append(out, ride)
	}
	return out, total, rows.Err()
}

// Update applies owner field edits. The seat-capacity and date-ordering
// guards ride in the WHERE clause so the check and the edit are one atomic
// statement; no read-check-write happens in application code.
func (r RideRepository) Update(ctx context.Context, id, driverID int64, upd models.RideUpdate) error {
	sets := []string{}
	args := []any{}

	set := func(clause string, v any) {
		sets = append(sets, clause)
		args = append(args, v)
	}

	if upd.RouteFrom != nil {
		set("route_from=?", strings.TrimSpace(*upd.RouteFrom))
	}
	if upd.RouteTo != nil {
		set("route_to=?", strings.TrimSpace(*upd.RouteTo))
	}
	if upd.JourneyDate != nil {
		set("journey_date=?", *upd.JourneyDate)
	}
	if upd.ReturnDate != nil {
		set("return_date=?", nullIfEmpty(*upd.ReturnDate))
	}
	if upd.Category != nil {
		set("category=?", *upd.Category)
	}
	if upd.PricePerSeat != nil {
		set("price_per_seat=?", *upd.PricePerSeat)
	}
	if upd.VehicleModel != nil {
		set("vehicle_model=?", strings.TrimSpace(*upd.VehicleModel))
	}
	if upd.ImageURL != nil {
		set("image_url=?", strings.TrimSpace(*upd.ImageURL))
	}

	guards := []string{}
	guardArgs := []any{}
	if upd.ReturnDate != nil && *upd.ReturnDate != "" && upd.JourneyDate == nil {
		// return date may not land before the stored journey date
		guards = append(guards, "? >= journey_date")
		guardArgs = append(guardArgs, *upd.ReturnDate)
	}
	if upd.JourneyDate != nil && upd.ReturnDate == nil {
		guards = append(guards, "(return_date IS NULL OR return_date >= ?)")
		guardArgs = append(guardArgs, *upd.JourneyDate)
	}
	if upd.TotalSeats != nil {
		set("total_seats=?", *upd.TotalSeats)
		if upd.AvailableSeats == nil {
			// shrinking capacity below seats still on sale is rejected
			guards = append(guards, "available_seats <= ?")
			guardArgs = append(guardArgs, *upd.TotalSeats)
		}
	}
	if upd.AvailableSeats != nil {
		set("available_seats=?", *upd.AvailableSeats)
		if upd.TotalSeats == nil {
			guards = append(guards, "? <= total_seats")
			guardArgs = append(guardArgs, *upd.AvailableSeats)
		}
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=NOW()")

	query := `UPDATE rides SET ` + strings.Join(sets, ",") + ` WHERE id=? AND driver_id=?`
	args = append(args, id, driverID)
	if len(guards) > 0 {
		query += " AND " + strings.Join(guards, " AND ")
		args = append(args, guardArgs...)
	}

	res, err := r.db().ExecContext(ctx, query, args...)
	if err != nil {
		return domain.DependencyError{Op: "update ride", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.classifyUpdateMiss(ctx, id, driverID, upd)
	}
	return nil
}

// classifyUpdateMiss turns a zero-row UPDATE into a precise error.
func (r RideRepository) classifyUpdateMiss(ctx context.Context, id, driverID int64, upd models.RideUpdate) error {
	ride, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ride.DriverID != driverID {
		return domain.ForbiddenError{Msg: "ride belongs to another driver"}
	}
	if upd.ReturnDate != nil && *upd.ReturnDate != "" && upd.JourneyDate == nil && *upd.ReturnDate < ride.JourneyDate {
		return domain.ValidationError{Field: "returnDate", Msg: "must not be before journey date"}
	}
	if upd.JourneyDate != nil && upd.ReturnDate == nil && ride.ReturnDate != "" && ride.ReturnDate < *upd.JourneyDate {
		return domain.ValidationError{Field: "journeyDate", Msg: "must not be after return date"}
	}
	if upd.TotalSeats != nil && upd.AvailableSeats == nil && ride.AvailableSeats > *upd.TotalSeats {
		return domain.ValidationError{Field: "totalSeats", Msg: "cannot shrink below seats currently available"}
	}
	if upd.AvailableSeats != nil && upd.TotalSeats == nil && *upd.AvailableSeats > ride.TotalSeats {
		return domain.ValidationError{Field: "availableSeats", Msg: "cannot exceed total seats"}
	}
	// values already matched the row; treat as a no-op success
	return nil
}

// SetStatus toggles a ride between available and unavailable.
func (r RideRepository) SetStatus(ctx context.Context, id, driverID int64, status models.RideStatus) error {
	res, err := r.db().ExecContext(ctx,
		`UPDATE rides SET status=?, updated_at=NOW() WHERE id=? AND driver_id=?`,
		status, id, driverID,
	)
	if err != nil {
		return domain.DependencyError{Op: "set ride status", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		ride, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ride.DriverID != driverID {
			return domain.ForbiddenError{Msg: "ride belongs to another driver"}
		}
	}
	return nil
}

func (r RideRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM rides WHERE id=?`, id)
	if err != nil {
		return domain.DependencyError{Op: "delete ride", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "ride"}
	}
	return nil
}

func (r RideRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM rides`).Scan(&n); err != nil {
		return 0, domain.DependencyError{Op: "count rides", Err: err}
	}
	return n, nil
}
