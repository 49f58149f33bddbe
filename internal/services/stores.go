package services

import (
	"context"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
)

// RideStore is the slice of ride storage the booking protocol reads for
// its preconditions. All counter mutations go through BookingStore, where
// they are atomic with the ledger writes.
type RideStore interface {
	GetByID(ctx context.Context, id int64) (models.Ride, error)
}

// BookingStore persists the booking ledger and owns both seat counter
// moves: the acquiring decrement and the compensating credit. Each runs
// atomically with its ledger write, so a booking and its seat deduction
// exist together or not at all.
type BookingStore interface {
	// ReserveAndInsert decrements the ride's available seats and writes the
	// booking row in one transaction. The decrement only matches while the
	// ride is available and holds at least b.Seats; a zero match surfaces
	// as domain.SeatUnavailableError with nothing written. Price snapshots
	// are filled into b from the ride row as observed inside the same
	// transaction; any failure after the decrement rolls it back.
	ReserveAndInsert(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	GetDetail(ctx context.Context, id int64) (models.BookingDetail, error)
	ListByRider(ctx context.Context, riderID int64, page, size int) ([]models.BookingDetail, int, error)
	ListByDriver(ctx context.Context, driverID int64, page, size int) ([]models.BookingDetail, int, error)
	// UpdateStatusIf flips the status only when the current one is in
	// `from`; reports whether the flip happened.
	UpdateStatusIf(ctx context.Context, id int64, from []models.BookingStatus, to models.BookingStatus) (bool, error)
	// ReleaseSeats applies the compensating seat credit exactly once per
	// booking; reports whether this call applied it.
	ReleaseSeats(ctx context.Context, bookingID int64) (bool, error)
	ListUnreleased(ctx context.Context) ([]int64, error)
}
