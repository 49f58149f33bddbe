package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/repositories"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/utils"
)

// BookingService runs the seat reservation protocol: every change to a
// ride's available seats goes through the stores' atomic conditional
// operations, so concurrent bookings can never oversell and every
// successful decrement has exactly one booking record.
type BookingService struct {
	Rides     RideStore
	Bookings  BookingStore
	RequestID string
	Now       func() time.Time
}

func (s BookingService) rides() RideStore {
	if s.Rides != nil {
		return s.Rides
	}
	return repositories.RideRepository{}
}

func (s BookingService) bookings() BookingStore {
	if s.Bookings != nil {
		return s.Bookings
	}
	return repositories.BookingRepository{}
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// BookInput carries a rider's reservation request.
type BookInput struct {
	RideID       int64
	Seats        int
	ContactName  string
	ContactPhone string
	Note         string
}

// Book reserves seats for a rider. Cheap preconditions run first so losers
// of the shape checks never touch the contended counter; the availability
// check itself is re-verified inside the atomic decrement regardless of
// what the validation read showed.
func (s BookingService) Book(ctx context.Context, riderID int64, in BookInput) (models.Booking, error) {
	if in.RideID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "rideId", Msg: "must be a positive id"}
	}
	if in.Seats < 1 {
		return models.Booking{}, domain.ValidationError{Field: "seats", Msg: "must book at least one seat"}
	}
	contactName := utils.NormalizeSpace(in.ContactName)
	contactPhone := utils.TrimOrEmpty(in.ContactPhone)
	if contactName == "" {
		return models.Booking{}, domain.ValidationError{Field: "contactName", Msg: "required"}
	}
	if contactPhone == "" {
		return models.Booking{}, domain.ValidationError{Field: "contactPhone", Msg: "required"}
	}

	ride, err := s.rides().GetByID(ctx, in.RideID)
	if err != nil {
		return models.Booking{}, err
	}
	if ride.DriverID == riderID {
		return models.Booking{}, domain.ForbiddenError{Msg: "drivers cannot book their own ride"}
	}
	if ride.Status != models.RideStatusAvailable {
		return models.Booking{}, domain.InvalidStateError{Resource: "ride", Status: string(ride.Status)}
	}

	booking := models.Booking{
		Code:         NewBookingCode(),
		RideID:       ride.ID,
		RiderID:      riderID,
		DriverID:     ride.DriverID,
		Seats:        in.Seats,
		ContactName:  contactName,
		ContactPhone: contactPhone,
		Note:         utils.TrimOrEmpty(in.Note),
		Status:       models.BookingStatusBooked,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}

	// Decrement, price snapshot and ledger insert commit together; on any
	// failure neither the counter nor the ledger changes.
	if err := s.bookings().ReserveAndInsert(ctx, &booking); err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "book",
		fmt.Sprintf("booking_id=%d ride_id=%d rider_id=%d seats=%d", booking.ID, ride.ID, riderID, in.Seats))
	return booking, nil
}

// Cancel is the compensating path. Phase one flips the booking to
// cancelled (the durable record of intent); phase two credits the seats
// back through the store's exactly-once release. A phase-two failure
// leaves a detectable, retryable gap that ReconcileSeatReleases closes.
func (s BookingService) Cancel(ctx context.Context, riderID, bookingID int64) (models.Booking, error) {
	booking, err := s.bookings().GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.RiderID != riderID {
		return models.Booking{}, domain.ForbiddenError{Msg: "booking belongs to another rider"}
	}
	if !booking.Status.CanTransitionTo(models.BookingStatusCancelled) {
		return models.Booking{}, domain.InvalidStateError{Resource: "booking", Status: string(booking.Status)}
	}

	ride, err := s.rides().GetByID(ctx, booking.RideID)
	switch {
	case domain.IsNotFound(err):
		// The ride is gone; there is no journey left to gate on and no
		// seat pool to refill, so the cancel itself still goes through.
	case err != nil:
		return models.Booking{}, err
	default:
		journey, parseErr := utils.ParseDate(ride.JourneyDate)
		if parseErr != nil {
			return models.Booking{}, domain.InternalError{Msg: "ride has malformed journey date", Err: parseErr}
		}
		if !s.now().Before(journey) {
			return models.Booking{}, domain.WindowClosedError{JourneyDate: ride.JourneyDate}
		}
	}

	flipped, err := s.bookings().UpdateStatusIf(ctx, bookingID, models.CancellableStatuses(), models.BookingStatusCancelled)
	if err != nil {
		return models.Booking{}, err
	}
	if !flipped {
		// Lost the race against another transition on this booking.
		current, getErr := s.bookings().GetByID(ctx, bookingID)
		status := string(booking.Status)
		if getErr == nil {
			status = string(current.Status)
		}
		return models.Booking{}, domain.InvalidStateError{Resource: "booking", Status: status}
	}

	if _, err := s.bookings().ReleaseSeats(ctx, bookingID); err != nil {
		// Booking stays cancelled; the credit is retried by the sweep.
		utils.LogEvent(s.RequestID, "booking", "release_pending",
			fmt.Sprintf("booking_id=%d err=%v", bookingID, err))
	}

	booking.Status = models.BookingStatusCancelled
	utils.LogEvent(s.RequestID, "booking", "cancel",
		fmt.Sprintf("booking_id=%d ride_id=%d seats=%d", bookingID, booking.RideID, booking.Seats))
	return booking, nil
}

// Transition drives the driver/admin status changes (confirm, reject,
// complete). Rejection frees the held seats through the same exactly-once
// release as cancellation.
func (s BookingService) Transition(ctx context.Context, actorID int64, actorRole string, bookingID int64, to models.BookingStatus) (models.Booking, error) {
	if !to.Valid() || to == models.BookingStatusCancelled || to == models.BookingStatusBooked {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "unsupported transition target"}
	}

	booking, err := s.bookings().GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.DriverID != actorID && actorRole != models.RoleAdmin {
		return models.Booking{}, domain.ForbiddenError{Msg: "only the ride's driver may update this booking"}
	}
	if !booking.Status.CanTransitionTo(to) {
		return models.Booking{}, domain.InvalidStateError{Resource: "booking", Status: string(booking.Status)}
	}

	from := []models.BookingStatus{booking.Status}
	flipped, err := s.bookings().UpdateStatusIf(ctx, bookingID, from, to)
	if err != nil {
		return models.Booking{}, err
	}
	if !flipped {
		current, getErr := s.bookings().GetByID(ctx, bookingID)
		status := string(booking.Status)
		if getErr == nil {
			status = string(current.Status)
		}
		return models.Booking{}, domain.InvalidStateError{Resource: "booking", Status: status}
	}

	if to == models.BookingStatusRejected {
		if _, err := s.bookings().ReleaseSeats(ctx, bookingID); err != nil {
			utils.LogEvent(s.RequestID, "booking", "release_pending",
				fmt.Sprintf("booking_id=%d err=%v", bookingID, err))
		}
	}

	booking.Status = to
	utils.LogEvent(s.RequestID, "booking", "transition",
		fmt.Sprintf("booking_id=%d to=%s actor_id=%d", bookingID, to, actorID))
	return booking, nil
}

func (s BookingService) ListMine(ctx context.Context, riderID int64, page, size int) ([]models.BookingDetail, int, error) {
	return s.bookings().ListByRider(ctx, riderID, page, size)
}

func (s BookingService) ListForDriver(ctx context.Context, driverID int64, page, size int) ([]models.BookingDetail, int, error) {
	return s.bookings().ListByDriver(ctx, driverID, page, size)
}

// Get returns a booking detail, visible to its rider, its driver and admins.
func (s BookingService) Get(ctx context.Context, actorID int64, actorRole string, bookingID int64) (models.BookingDetail, error) {
	d, err := s.bookings().GetDetail(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, err
	}
	if d.RiderID != actorID && d.DriverID != actorID && actorRole != models.RoleAdmin {
		return models.BookingDetail{}, domain.ForbiddenError{Msg: "booking belongs to another user"}
	}
	return d, nil
}

// ReconcileSeatReleases retries the compensating credit for bookings whose
// phase-two release failed mid-flight. Safe to run any number of times.
func (s BookingService) ReconcileSeatReleases(ctx context.Context) (int, error) {
	ids, err := s.bookings().ListUnreleased(ctx)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, id := range ids {
		ok, err := s.bookings().ReleaseSeats(ctx, id)
		if err != nil {
			return released, err
		}
		if ok {
			released++
		}
	}
	if released > 0 {
		utils.LogEvent(s.RequestID, "booking", "reconcile", fmt.Sprintf("released=%d", released))
	}
	return released, nil
}

// NewBookingCode returns a short human-readable booking reference.
func NewBookingCode() string {
	return "RV-" + strings.ToUpper(uuid.NewString()[:8])
}
