package models

import "time"

type RideStatus string

const (
	RideStatusAvailable   RideStatus = "available"
	RideStatusUnavailable RideStatus = "unavailable"
)

func (s RideStatus) Valid() bool {
	return s == RideStatusAvailable || s == RideStatusUnavailable
}

type RideCategory string

const (
	CategoryAmbulance RideCategory = "ambulance"
	CategoryCar       RideCategory = "car"
	CategoryTruck     RideCategory = "truck"
)

func (c RideCategory) Valid() bool {
	switch c {
	case CategoryAmbulance, CategoryCar, CategoryTruck:
		return true
	}
	return false
}

// Ride is one offered trip. AvailableSeats is the source of truth for
// capacity and only moves through the conditional counter updates in the
// ride repository; 0 <= AvailableSeats <= TotalSeats always holds.
type Ride struct {
	ID             int64        `json:"id"`
	DriverID       int64        `json:"driverId"`
	RouteFrom      string       `json:"routeFrom"`
	RouteTo        string       `json:"routeTo"`
	JourneyDate    string       `json:"journeyDate"`          // YYYY-MM-DD
	ReturnDate     string       `json:"returnDate,omitempty"` // optional, >= JourneyDate
	Category       RideCategory `json:"category"`
	PricePerSeat   int64        `json:"pricePerSeat"` // taka
	VehicleModel   string       `json:"vehicleModel"`
	TotalSeats     int          `json:"totalSeats"`
	AvailableSeats int          `json:"availableSeats"`
	Status         RideStatus   `json:"status"`
	ImageURL       string       `json:"imageUrl,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// RideUpdate supports PATCH-style updates via key presence.
type RideUpdate struct {
	RouteFrom      *string       `json:"routeFrom"`
	RouteTo        *string       `json:"routeTo"`
	JourneyDate    *string       `json:"journeyDate"`
	ReturnDate     *string       `json:"returnDate"`
	Category       *RideCategory `json:"category"`
	PricePerSeat   *int64        `json:"pricePerSeat"`
	VehicleModel   *string       `json:"vehicleModel"`
	TotalSeats     *int          `json:"totalSeats"`
	AvailableSeats *int          `json:"availableSeats"`
	ImageURL       *string       `json:"imageUrl"`
}

// RideFilter narrows ride searches.
type RideFilter struct {
	From     string
	To       string
	Date     string
	Category RideCategory
	Status   RideStatus
	DriverID int64
	Page     int
	PageSize int
}
