package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
)

func testBooking(seats int) models.Booking {
	return models.Booking{
		Code:         "RV-TEST1234",
		RideID:       1,
		RiderID:      2,
		DriverID:     9,
		Seats:        seats,
		ContactName:  "Rahim Uddin",
		ContactPhone: "01711111111",
		Status:       models.BookingStatusBooked,
	}
}

func TestReserveAndInsertCommitsDecrementWithLedgerRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").
		WithArgs(2, int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT price_per_seat FROM rides").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_per_seat"}).AddRow(1200))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	repo := BookingRepository{DB: db}
	b := testBooking(2)
	if err := repo.ReserveAndInsert(context.Background(), &b); err != nil {
		t.Fatalf("ReserveAndInsert failed: %v", err)
	}
	if b.ID != 7 {
		t.Errorf("expected booking id 7, got %d", b.ID)
	}
	if b.PricePerSeat != 1200 || b.TotalPrice != 2400 {
		t.Errorf("expected snapshot 1200/2400, got %d/%d", b.PricePerSeat, b.TotalPrice)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveAndInsertZeroRowsIsSeatUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// The conditional decrement matched nothing: sold out or race lost.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").
		WithArgs(3, int64(1), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := BookingRepository{DB: db}
	b := testBooking(3)
	if err := repo.ReserveAndInsert(context.Background(), &b); !domain.IsSeatUnavailable(err) {
		t.Fatalf("expected SeatUnavailableError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveAndInsertSnapshotFailureRollsBackDecrement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// The decrement lands but the price read dies; the rollback must undo
	// the decrement so no seats leak without a ledger row.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").
		WithArgs(2, int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT price_per_seat FROM rides").
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := BookingRepository{DB: db}
	b := testBooking(2)
	if err := repo.ReserveAndInsert(context.Background(), &b); !domain.IsDependency(err) {
		t.Fatalf("expected DependencyError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveAndInsertLedgerFailureRollsBackDecrement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").
		WithArgs(2, int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT price_per_seat FROM rides").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_per_seat"}).AddRow(1200))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	repo := BookingRepository{DB: db}
	b := testBooking(2)
	if err := repo.ReserveAndInsert(context.Background(), &b); !domain.IsDependency(err) {
		t.Fatalf("expected DependencyError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusIfMissReturnsFalse(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs(string(models.BookingStatusCancelled), int64(5),
			string(models.BookingStatusBooked), string(models.BookingStatusConfirmed)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := BookingRepository{DB: db}
	flipped, err := repo.UpdateStatusIf(context.Background(), 5,
		models.CancellableStatuses(), models.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatusIf failed: %v", err)
	}
	if flipped {
		t.Fatal("expected no flip when the booking is already terminal")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReleaseSeatsAppliesCreditOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET seats_released=1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rides r").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := BookingRepository{DB: db}
	released, err := repo.ReleaseSeats(context.Background(), 5)
	if err != nil {
		t.Fatalf("ReleaseSeats failed: %v", err)
	}
	if !released {
		t.Fatal("expected the credit to be applied")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReleaseSeatsAlreadyCreditedIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// Marker flip misses: booking already credited or not terminal.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET seats_released=1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := BookingRepository{DB: db}
	released, err := repo.ReleaseSeats(context.Background(), 5)
	if err != nil {
		t.Fatalf("ReleaseSeats failed: %v", err)
	}
	if released {
		t.Fatal("expected no second credit")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
