package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/utils"
)

// memState is a lock-based in-memory store backing both store interfaces.
// Its conditional operations mirror the SQL repositories: check and write
// under one lock, exactly like the one-statement conditional UPDATEs.
type memState struct {
	mu          sync.Mutex
	rides       map[int64]models.Ride
	bookings    map[int64]models.Booking
	nextID      int64
	failInsert  bool
	failRelease bool
}

func newMemState() *memState {
	return &memState{
		rides:    map[int64]models.Ride{},
		bookings: map[int64]models.Booking{},
	}
}

func (m *memState) addRide(r models.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[r.ID] = r
}

type memRides struct{ s *memState }

func (r memRides) GetByID(_ context.Context, id int64) (models.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ride, ok := r.s.rides[id]
	if !ok {
		return models.Ride{}, domain.NotFoundError{Resource: "ride"}
	}
	return ride, nil
}

type memBookings struct{ s *memState }

func (b memBookings) ReserveAndInsert(_ context.Context, booking *models.Booking) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	ride, ok := b.s.rides[booking.RideID]
	if !ok || ride.Status != models.RideStatusAvailable || ride.AvailableSeats < booking.Seats {
		return domain.SeatUnavailableError{RideID: booking.RideID, Requested: booking.Seats}
	}
	if b.s.failInsert {
		// failure before commit: neither the counter nor the ledger moves
		return domain.DependencyError{Op: "insert booking", Err: errors.New("insert failed")}
	}
	ride.AvailableSeats -= booking.Seats
	b.s.rides[booking.RideID] = ride
	booking.PricePerSeat = ride.PricePerSeat
	booking.TotalPrice = ride.PricePerSeat * int64(booking.Seats)
	b.s.nextID++
	booking.ID = b.s.nextID
	b.s.bookings[booking.ID] = *booking
	return nil
}

func (b memBookings) GetByID(_ context.Context, id int64) (models.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	booking, ok := b.s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return booking, nil
}

func (b memBookings) GetDetail(ctx context.Context, id int64) (models.BookingDetail, error) {
	booking, err := b.GetByID(ctx, id)
	if err != nil {
		return models.BookingDetail{}, err
	}
	return models.BookingDetail{Booking: booking}, nil
}

func (b memBookings) list(match func(models.Booking) bool) []models.BookingDetail {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	out := []models.BookingDetail{}
	for _, booking := range b.s.bookings {
		if match(booking) {
			out = append(out, models.BookingDetail{Booking: booking})
		}
	}
	return out
}

func (b memBookings) ListByRider(_ context.Context, riderID int64, _, _ int) ([]models.BookingDetail, int, error) {
	out := b.list(func(bk models.Booking) bool { return bk.RiderID == riderID })
	return out, len(out), nil
}

func (b memBookings) ListByDriver(_ context.Context, driverID int64, _, _ int) ([]models.BookingDetail, int, error) {
	out := b.list(func(bk models.Booking) bool { return bk.DriverID == driverID })
	return out, len(out), nil
}

func (b memBookings) UpdateStatusIf(_ context.Context, id int64, from []models.BookingStatus, to models.BookingStatus) (bool, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	booking, ok := b.s.bookings[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if booking.Status == f {
			booking.Status = to
			b.s.bookings[id] = booking
			return true, nil
		}
	}
	return false, nil
}

func (b memBookings) ReleaseSeats(_ context.Context, bookingID int64) (bool, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.failRelease {
		return false, domain.DependencyError{Op: "release seats", Err: errors.New("store down")}
	}
	booking, ok := b.s.bookings[bookingID]
	if !ok || booking.SeatsReleased ||
		(booking.Status != models.BookingStatusCancelled && booking.Status != models.BookingStatusRejected) {
		return false, nil
	}
	booking.SeatsReleased = true
	b.s.bookings[bookingID] = booking
	if ride, ok := b.s.rides[booking.RideID]; ok {
		ride.AvailableSeats += booking.Seats
		if ride.AvailableSeats > ride.TotalSeats {
			ride.AvailableSeats = ride.TotalSeats
		}
		b.s.rides[booking.RideID] = ride
	}
	return true, nil
}

func (b memBookings) ListUnreleased(_ context.Context) ([]int64, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	out := []int64{}
	for id, booking := range b.s.bookings {
		if !booking.SeatsReleased &&
			(booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusRejected) {
			out = append(out, id)
		}
	}
	return out, nil
}

func futureDate(days int) string {
	return utils.FormatDate(time.Now().AddDate(0, 0, days))
}

func newTestService(state *memState) BookingService {
	return BookingService{
		Rides:    memRides{s: state},
		Bookings: memBookings{s: state},
	}
}

func seedRide(state *memState, id, driverID int64, price int64, total int) models.Ride {
	ride := models.Ride{
		ID:             id,
		DriverID:       driverID,
		RouteFrom:      "Dhaka",
		RouteTo:        "Chattogram",
		JourneyDate:    futureDate(3),
		Category:       models.CategoryCar,
		PricePerSeat:   price,
		TotalSeats:     total,
		AvailableSeats: total,
		Status:         models.RideStatusAvailable,
	}
	state.addRide(ride)
	return ride
}

func validBook(rideID int64, seats int) BookInput {
	return BookInput{
		RideID:       rideID,
		Seats:        seats,
		ContactName:  "Rahim Uddin",
		ContactPhone: "01711111111",
	}
}

func TestBookValidation(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)
	ctx := context.Background()

	_, err := svc.Book(ctx, 2, BookInput{RideID: 1, Seats: 0, ContactName: "A", ContactPhone: "1"})
	assert.True(t, domain.IsValidation(err), "zero seats: %v", err)

	_, err = svc.Book(ctx, 2, BookInput{RideID: 1, Seats: 1, ContactName: "  ", ContactPhone: "1"})
	assert.True(t, domain.IsValidation(err), "blank name: %v", err)

	_, err = svc.Book(ctx, 2, BookInput{RideID: 1, Seats: 1, ContactName: "A", ContactPhone: ""})
	assert.True(t, domain.IsValidation(err), "blank phone: %v", err)

	// nothing above touched the counter
	ride, _ := svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 4, ride.AvailableSeats)
}

func TestBookRideNotFound(t *testing.T) {
	svc := newTestService(newMemState())
	_, err := svc.Book(context.Background(), 2, validBook(99, 1))
	assert.True(t, domain.IsNotFound(err))
}

func TestBookSelfBookingForbidden(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)

	_, err := svc.Book(context.Background(), 9, validBook(1, 1))
	require.True(t, domain.IsForbidden(err), "got %v", err)

	ride, _ := svc.rides().GetByID(context.Background(), 1)
	assert.Equal(t, 4, ride.AvailableSeats, "counter must be untouched")
}

func TestBookUnavailableRideInvalidState(t *testing.T) {
	state := newMemState()
	ride := seedRide(state, 1, 9, 500, 4)
	ride.Status = models.RideStatusUnavailable
	state.addRide(ride)
	svc := newTestService(state)

	_, err := svc.Book(context.Background(), 2, validBook(1, 1))
	assert.True(t, domain.IsInvalidState(err), "got %v", err)
}

func TestBookSoldOut(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 500, 500, 2)
	svc := newTestService(state)
	ctx := context.Background()

	_, err := svc.Book(ctx, 2, validBook(1, 2))
	require.NoError(t, err)

	_, err = svc.Book(ctx, 3, validBook(1, 1))
	assert.True(t, domain.IsSeatUnavailable(err), "got %v", err)

	ride, _ := svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 0, ride.AvailableSeats)
}

func TestBookSnapshotsPriceAtReservation(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 800, 4)
	svc := newTestService(state)
	ctx := context.Background()

	booking, err := svc.Book(ctx, 2, validBook(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(800), booking.PricePerSeat)
	assert.Equal(t, int64(1600), booking.TotalPrice)

	// Later price edits must not leak into the existing booking.
	ride := state.rides[1]
	ride.PricePerSeat = 9999
	state.addRide(ride)

	stored, err := svc.bookings().GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), stored.TotalPrice)
	assert.Equal(t, int64(800), stored.PricePerSeat)
}

func TestBookStoreFailureChangesNothing(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	state.failInsert = true
	svc := newTestService(state)

	_, err := svc.Book(context.Background(), 2, validBook(1, 3))
	require.True(t, domain.IsDependency(err), "got %v", err)

	ride, _ := svc.rides().GetByID(context.Background(), 1)
	assert.Equal(t, 4, ride.AvailableSeats, "a failed booking must not move the counter")
	assert.Empty(t, state.bookings)
}

func TestConcurrentBookingTwoForThreeSeats(t *testing.T) {
	// totalSeats=4, two riders racing for 3 seats each: exactly one wins.
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), int64(100+i), validBook(1, 3))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, domain.IsSeatUnavailable(err), "loser must see seat_unavailable, got %v", err)
		}
	}
	assert.Equal(t, 1, winners)

	ride, _ := svc.rides().GetByID(context.Background(), 1)
	assert.Equal(t, 1, ride.AvailableSeats)
}

func TestConcurrentBookingNoOversell(t *testing.T) {
	const total = 10
	state := newMemState()
	seedRide(state, 1, 9, 500, total)
	svc := newTestService(state)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seats := 1 + i%3
			_, _ = svc.Book(context.Background(), int64(1000+i), validBook(1, seats))
		}(i)
	}
	wg.Wait()

	ride, _ := svc.rides().GetByID(context.Background(), 1)
	require.GreaterOrEqual(t, ride.AvailableSeats, 0, "counter must never go negative")

	sold := 0
	for _, b := range state.bookings {
		if b.Status == models.BookingStatusBooked {
			sold += b.Seats
		}
	}
	assert.LessOrEqual(t, sold, total, "successful bookings must never oversell")
	assert.Equal(t, total-sold, ride.AvailableSeats, "counter and ledger must agree at quiescence")
}

func TestCancelRestoresSeatsOnce(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)
	ctx := context.Background()

	booking, err := svc.Book(ctx, 2, validBook(1, 2))
	require.NoError(t, err)

	ride, _ := svc.rides().GetByID(ctx, 1)
	require.Equal(t, 2, ride.AvailableSeats)

	cancelled, err := svc.Cancel(ctx, 2, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	ride, _ = svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 4, ride.AvailableSeats, "cancel restores exactly what was taken")

	// Second cancel: invalid state, no second credit.
	_, err = svc.Cancel(ctx, 2, booking.ID)
	assert.True(t, domain.IsInvalidState(err), "got %v", err)
	ride, _ = svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 4, ride.AvailableSeats)
}

func TestCancelForbiddenForOtherRider(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)
	ctx := context.Background()

	booking, err := svc.Book(ctx, 2, validBook(1, 1))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 3, booking.ID)
	assert.True(t, domain.IsForbidden(err), "got %v", err)
}

func TestCancelWindowClosedOnJourneyDay(t *testing.T) {
	state := newMemState()
	ride := seedRide(state, 1, 9, 500, 4)
	ride.JourneyDate = futureDate(0) // today
	state.addRide(ride)
	svc := newTestService(state)
	ctx := context.Background()

	booking, err := svc.Book(ctx, 2, validBook(1, 2))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 2, booking.ID)
	require.True(t, domain.IsWindowClosed(err), "got %v", err)

	stored, _ := svc.bookings().GetByID(ctx, booking.ID)
	assert.Equal(t, models.BookingStatusBooked, stored.Status, "no state change on window_closed")
	got, _ := svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 2, got.AvailableSeats)
}

func TestCancelReleaseFailureIsReconciled(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)
	ctx := context.Background()

	booking, err := svc.Book(ctx, 2, validBook(1, 3))
	require.NoError(t, err)

	// Phase two fails; the cancel itself still lands.
	state.failRelease = true
	cancelled, err := svc.Cancel(ctx, 2, booking.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	ride, _ := svc.rides().GetByID(ctx, 1)
	require.Equal(t, 1, ride.AvailableSeats, "credit still pending")

	// The sweep retries the credit; it lands exactly once.
	state.failRelease = false
	released, err := svc.ReconcileSeatReleases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	ride, _ = svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 4, ride.AvailableSeats)

	released, err = svc.ReconcileSeatReleases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, released, "reconcile must be idempotent")
}

func TestDriverRejectReleasesSeats(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)
	ctx := context.Background()

	booking, err := svc.Book(ctx, 2, validBook(1, 2))
	require.NoError(t, err)

	// Only the ride's driver (or admin) may reject.
	_, err = svc.Transition(ctx, 55, models.RoleDriver, booking.ID, models.BookingStatusRejected)
	require.True(t, domain.IsForbidden(err), "got %v", err)

	rejected, err := svc.Transition(ctx, 9, models.RoleDriver, booking.ID, models.BookingStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, rejected.Status)

	ride, _ := svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 4, ride.AvailableSeats, "rejection returns seats to the pool")
}

func TestConfirmThenCompleteLifecycle(t *testing.T) {
	state := newMemState()
	seedRide(state, 1, 9, 500, 4)
	svc := newTestService(state)
	ctx := context.Background()

	booking, err := svc.Book(ctx, 2, validBook(1, 1))
	require.NoError(t, err)

	confirmed, err := svc.Transition(ctx, 9, models.RoleDriver, booking.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	completed, err := svc.Transition(ctx, 9, models.RoleDriver, booking.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusCompleted, completed.Status)

	// Terminal: cancelling a completed booking is invalid, not a no-op.
	_, err = svc.Cancel(ctx, 2, booking.ID)
	assert.True(t, domain.IsInvalidState(err), "got %v", err)

	ride, _ := svc.rides().GetByID(ctx, 1)
	assert.Equal(t, 3, ride.AvailableSeats, "completed seats stay sold")
}
