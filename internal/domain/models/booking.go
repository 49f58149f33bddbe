package models

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the single place that defines the booking state
// machine. Terminal states have no outgoing edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusBooked:    {BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusBooked, BookingStatusConfirmed, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo validates an edge of the state machine.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CancellableStatuses are the states the conditional cancel flip accepts.
func CancellableStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusBooked, BookingStatusConfirmed}
}

// Booking is one rider's reservation against a ride. PricePerSeat,
// TotalPrice and DriverID are snapshots taken at booking time; later ride
// edits never touch them. SeatsReleased marks whether the compensating
// seat credit has been applied after a terminal transition that frees
// seats (cancel or reject), so retries credit at most once.
type Booking struct {
	ID            int64         `json:"id"`
	Code          string        `json:"code"`
	RideID        int64         `json:"rideId"`
	RiderID       int64         `json:"riderId"`
	DriverID      int64         `json:"driverId"`
	Seats         int           `json:"seats"`
	PricePerSeat  int64         `json:"pricePerSeat"`
	TotalPrice    int64         `json:"totalPrice"`
	ContactName   string        `json:"contactName"`
	ContactPhone  string        `json:"contactPhone"`
	Note          string        `json:"note,omitempty"`
	Status        BookingStatus `json:"status"`
	SeatsReleased bool          `json:"-"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// BookingDetail joins a booking with display fields from its ride for
// list and receipt views.
type BookingDetail struct {
	Booking
	RouteFrom    string       `json:"routeFrom"`
	RouteTo      string       `json:"routeTo"`
	JourneyDate  string       `json:"journeyDate"`
	Category     RideCategory `json:"category"`
	VehicleModel string       `json:"vehicleModel"`
}
