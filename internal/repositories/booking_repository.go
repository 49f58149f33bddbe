package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/config"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, code, ride_id, rider_id, driver_id, seats,
	price_per_seat, total_price, contact_name, contact_phone,
	COALESCE(note, ''), status, seats_released, created_at, updated_at`

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.Code,
		&b.RideID,
		&b.RiderID,
		&b.DriverID,
		&b.Seats,
		&b.PricePerSeat,
		&b.TotalPrice,
		&b.ContactName,
		&b.ContactPhone,
		&b.Note,
		&b.Status,
		&b.SeatsReleased,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

// ReserveAndInsert is the acquiring half of the seat protocol: the
// conditional decrement, the price snapshot and the ledger insert run in
// one transaction. The availability check and the decrement are one
// statement; when two riders race for the last seats, MySQL serializes
// the row update and exactly one UPDATE matches. A zero-row result is the
// loser signal, surfaced as SeatUnavailableError. Any later failure rolls
// the decrement back with the transaction, so a booking and its seat
// deduction exist together or not at all.
func (r BookingRepository) ReserveAndInsert(ctx context.Context, b *models.Booking) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return domain.DependencyError{Op: "reserve seats", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE rides
		SET available_seats = available_seats - ?, updated_at = NOW()
		WHERE id = ? AND status = 'available' AND available_seats >= ?`,
		b.Seats, b.RideID, b.Seats,
	)
	if err != nil {
		return domain.DependencyError{Op: "reserve seats", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.SeatUnavailableError{RideID: b.RideID, Requested: b.Seats}
	}

	// Price observed at the moment the decrement landed, not from any
	// earlier validation read.
	if err := tx.QueryRowContext(ctx,
		`SELECT price_per_seat FROM rides WHERE id=? LIMIT 1`, b.RideID,
	).Scan(&b.PricePerSeat); err != nil {
		return domain.DependencyError{Op: "snapshot ride price", Err: err}
	}
	b.TotalPrice = b.PricePerSeat * int64(b.Seats)

	ins, err := tx.ExecContext(ctx, `
		INSERT INTO bookings
			(code, ride_id, rider_id, driver_id, seats, price_per_seat, total_price,
			 contact_name, contact_phone, note, status, seats_released, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NOW(), NOW())`,
		b.Code,
		b.RideID,
		b.RiderID,
		b.DriverID,
		b.Seats,
		b.PricePerSeat,
		b.TotalPrice,
		b.ContactName,
		b.ContactPhone,
		nullIfEmpty(b.Note),
		b.Status,
	)
	if err != nil {
		return domain.DependencyError{Op: "insert booking", Err: err}
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return domain.DependencyError{Op: "insert booking", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.DependencyError{Op: "reserve seats", Err: err}
	}
	b.ID = id
	return nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, domain.DependencyError{Op: "get booking", Err: err}
	}
	return b, nil
}

const bookingDetailQuery = `
	SELECT b.id, b.code, b.ride_id, b.rider_id, b.driver_id, b.seats,
	       b.price_per_seat, b.total_price, b.contact_name, b.contact_phone,
	       COALESCE(b.note, ''), b.status, b.seats_released, b.created_at, b.updated_at,
	       COALESCE(r.route_from, ''), COALESCE(r.route_to, ''),
	       COALESCE(DATE_FORMAT(r.journey_date, '%Y-%m-%d'), ''),
	       COALESCE(r.category, 'car'), COALESCE(r.vehicle_model, '')
	FROM bookings b
	LEFT JOIN rides r ON r.id = b.ride_id`

func scanBookingDetail(row rowScanner) (models.BookingDetail, error) {
	var d models.BookingDetail
	err := row.Scan(
		&d.ID,
		&d.Code,
		&d.RideID,
		&d.RiderID,
		&d.DriverID,
		&d.Seats,
		&d.PricePerSeat,
		&d.TotalPrice,
		&d.ContactName,
		&d.ContactPhone,
		&d.Note,
		&d.Status,
		&d.SeatsReleased,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.RouteFrom,
		&d.RouteTo,
		&d.JourneyDate,
		&d.Category,
		&d.VehicleModel,
	)
	return d, err
}

func (r BookingRepository) GetDetail(ctx context.Context, id int64) (models.BookingDetail, error) {
	row := r.db().QueryRowContext(ctx, bookingDetailQuery+` WHERE b.id=? LIMIT 1`, id)
	d, err := scanBookingDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BookingDetail{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.BookingDetail{}, domain.DependencyError{Op: "get booking detail", Err: err}
	}
	return d, nil
}

func (r BookingRepository) listDetails(ctx context.Context, cond string, condArg int64, page, size int) ([]models.BookingDetail, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM bookings b`
	countArgs := []any{}
	if cond != "" {
		countQuery += ` WHERE ` + cond
		countArgs = append(countArgs, condArg)
	}
	if err := r.db().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, domain.DependencyError{Op: "count bookings", Err: err}
	}

	p := domainPage(page, size)
	query := bookingDetailQuery
	args := []any{}
	if cond != "" {
		query += ` WHERE ` + cond
		args = append(args, condArg)
	}
	query += ` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`
	args = append(args, p.PageSize, p.Offset())

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.DependencyError{Op: "list bookings", Err: err}
	}
	defer rows.Close()

	out := []models.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return out, total, domain.DependencyError{Op: "scan booking", Err: err}
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r BookingRepository) ListByRider(ctx context.Context, riderID int64, page, size int) ([]models.BookingDetail, int, error) {
	return r.listDetails(ctx, "b.rider_id = ?", riderID, page, size)
}

func (r BookingRepository) ListByDriver(ctx context.Context, driverID int64, page, size int) ([]models.BookingDetail, int, error) {
	return r.listDetails(ctx, "b.driver_id = ?", driverID, page, size)
}

func (r BookingRepository) ListAll(ctx context.Context, page, size int) ([]models.BookingDetail, int, error) {
	return r.listDetails(ctx, "", 0, page, size)
}

// UpdateStatusIf flips a booking status only when the current status is in
// the allowed set; the condition and the write are one statement, so a
// racing double transition resolves with exactly one winner. Returns false
// when the flip did not happen.
func (r BookingRepository) UpdateStatusIf(ctx context.Context, id int64, from []models.BookingStatus, to models.BookingStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	args := []any{to, id}
	for _, s := range from {
		args = append(args, s)
	}
	res, err := r.db().ExecContext(ctx,
		`UPDATE bookings SET status=?, updated_at=NOW() WHERE id=? AND status IN (`+statusPlaceholders(len(from))+`)`,
		args...,
	)
	if err != nil {
		return false, domain.DependencyError{Op: "update booking status", Err: err}
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReleaseSeats applies the compensating seat credit for a booking that
// reached a seat-freeing terminal status (cancelled or rejected). The
// seats_released marker flip and the ride counter increment run in one
// transaction, so the credit lands exactly once no matter how often a
// failed release is retried. Returns false when the credit was already
// applied (or the booking does not qualify).
func (r BookingRepository) ReleaseSeats(ctx context.Context, bookingID int64) (bool, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return false, domain.DependencyError{Op: "release seats", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET seats_released=1, updated_at=NOW()
		WHERE id=? AND seats_released=0 AND status IN ('cancelled', 'rejected')`,
		bookingID,
	)
	if err != nil {
		return false, domain.DependencyError{Op: "release seats", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	// The ride may have been deleted meanwhile; a zero-row credit is fine
	// because there is no pool left to return the seats to.
	if _, err := tx.ExecContext(ctx, `
		UPDATE rides r
		JOIN bookings b ON b.ride_id = r.id
		SET r.available_seats = LEAST(r.available_seats + b.seats, r.total_seats),
		    r.updated_at = NOW()
		WHERE b.id = ?`,
		bookingID,
	); err != nil {
		return false, domain.DependencyError{Op: "release seats", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return false, domain.DependencyError{Op: "release seats", Err: err}
	}
	return true, nil
}

// ListUnreleased returns bookings whose compensation is still pending, for
// the reconcile sweep.
func (r BookingRepository) ListUnreleased(ctx context.Context) ([]int64, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT id FROM bookings
		WHERE seats_released=0 AND status IN ('cancelled', 'rejected')
		ORDER BY id ASC`)
	if err != nil {
		return nil, domain.DependencyError{Op: "list unreleased bookings", Err: err}
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, domain.DependencyError{Op: "scan booking id", Err: err}
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SeatStats reports booking counts and seats currently sold (active or
// completed, i.e. not returned to the pool).
func (r BookingRepository) SeatStats(ctx context.Context) (bookings, seatsSold int, err error) {
	err = r.db().QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status IN ('booked', 'confirmed', 'completed') THEN seats ELSE 0 END), 0)
		FROM bookings`).Scan(&bookings, &seatsSold)
	if err != nil {
		return 0, 0, domain.DependencyError{Op: "booking stats", Err: err}
	}
	return bookings, seatsSold, nil
}
