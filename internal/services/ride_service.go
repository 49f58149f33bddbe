package services

import (
	"context"
	"fmt"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/repositories"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/utils"
)

// RideService owns ride lifecycle outside the booking protocol: creation,
// owner edits, status toggling and deletion.
type RideService struct {
	RideRepo  repositories.RideRepository
	RequestID string
}

func (s RideService) repo() repositories.RideRepository {
	return s.RideRepo
}

// RideInput carries driver-provided ride fields. AvailableSeats nil means
// "all seats"; an explicit zero posts the ride with nothing on sale yet.
type RideInput struct {
	RouteFrom      string
	RouteTo        string
	JourneyDate    string
	ReturnDate     string
	Category       models.RideCategory
	PricePerSeat   int64
	VehicleModel   string
	TotalSeats     int
	AvailableSeats *int
	ImageURL       string
}

func (s RideService) Create(ctx context.Context, driverID int64, in RideInput) (models.Ride, error) {
	ride := models.Ride{
		DriverID:       driverID,
		RouteFrom:      utils.NormalizeSpace(in.RouteFrom),
		RouteTo:        utils.NormalizeSpace(in.RouteTo),
		JourneyDate:    utils.TrimOrEmpty(in.JourneyDate),
		ReturnDate:     utils.TrimOrEmpty(in.ReturnDate),
		Category:       in.Category,
		PricePerSeat:   in.PricePerSeat,
		VehicleModel:   utils.NormalizeSpace(in.VehicleModel),
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		Status:         models.RideStatusAvailable,
		ImageURL:       utils.TrimOrEmpty(in.ImageURL),
	}
	if in.AvailableSeats != nil {
		ride.AvailableSeats = *in.AvailableSeats
	}

	if err := validateRide(ride); err != nil {
		return models.Ride{}, err
	}

	id, err := s.repo().Create(ctx, &ride)
	if err != nil {
		return models.Ride{}, err
	}
	ride.ID = id

	utils.LogEvent(s.RequestID, "ride", "create",
		fmt.Sprintf("ride_id=%d driver_id=%d %s->%s seats=%d", id, driverID, ride.RouteFrom, ride.RouteTo, ride.TotalSeats))
	return s.repo().GetByID(ctx, id)
}

func validateRide(r models.Ride) error {
	if r.RouteFrom == "" {
		return domain.ValidationError{Field: "routeFrom", Msg: "required"}
	}
	if r.RouteTo == "" {
		return domain.ValidationError{Field: "routeTo", Msg: "required"}
	}
	if !utils.ValidDate(r.JourneyDate) {
		return domain.ValidationError{Field: "journeyDate", Msg: "must be YYYY-MM-DD"}
	}
	if r.ReturnDate != "" {
		ret, err := utils.ParseDate(r.ReturnDate)
		if err != nil {
			return domain.ValidationError{Field: "returnDate", Msg: "must be YYYY-MM-DD"}
		}
		journey, _ := utils.ParseDate(r.JourneyDate)
		if ret.Before(journey) {
			return domain.ValidationError{Field: "returnDate", Msg: "must not be before journey date"}
		}
	}
	if !r.Category.Valid() {
		return domain.ValidationError{Field: "category", Msg: "must be ambulance, car or truck"}
	}
	if r.PricePerSeat <= 0 {
		return domain.ValidationError{Field: "pricePerSeat", Msg: "must be positive"}
	}
	if r.TotalSeats < 1 {
		return domain.ValidationError{Field: "totalSeats", Msg: "must be at least 1"}
	}
	if r.AvailableSeats < 0 || r.AvailableSeats > r.TotalSeats {
		return domain.ValidationError{Field: "availableSeats", Msg: "must be between 0 and totalSeats"}
	}
	return nil
}

func (s RideService) Get(ctx context.Context, id int64) (models.Ride, error) {
	return s.repo().GetByID(ctx, id)
}

func (s RideService) Search(ctx context.Context, f models.RideFilter) ([]models.Ride, int, error) {
	return s.repo().Search(ctx, f)
}

// Update applies owner field edits. Shape checks and ordering within the
// payload are validated here; bounds against the stored row (capacity,
// date ordering) are enforced atomically inside the repository's UPDATE.
func (s RideService) Update(ctx context.Context, id, driverID int64, upd models.RideUpdate) (models.Ride, error) {
	if upd.JourneyDate != nil && !utils.ValidDate(*upd.JourneyDate) {
		return models.Ride{}, domain.ValidationError{Field: "journeyDate", Msg: "must be YYYY-MM-DD"}
	}
	if upd.ReturnDate != nil && *upd.ReturnDate != "" && !utils.ValidDate(*upd.ReturnDate) {
		return models.Ride{}, domain.ValidationError{Field: "returnDate", Msg: "must be YYYY-MM-DD"}
	}
	if upd.Category != nil && !upd.Category.Valid() {
		return models.Ride{}, domain.ValidationError{Field: "category", Msg: "must be ambulance, car or truck"}
	}
	if upd.PricePerSeat != nil && *upd.PricePerSeat <= 0 {
		return models.Ride{}, domain.ValidationError{Field: "pricePerSeat", Msg: "must be positive"}
	}
	if upd.TotalSeats != nil && *upd.TotalSeats < 1 {
		return models.Ride{}, domain.ValidationError{Field: "totalSeats", Msg: "must be at least 1"}
	}
	if upd.AvailableSeats != nil && *upd.AvailableSeats < 0 {
		return models.Ride{}, domain.ValidationError{Field: "availableSeats", Msg: "must not be negative"}
	}
	if upd.AvailableSeats != nil && upd.TotalSeats != nil && *upd.AvailableSeats > *upd.TotalSeats {
		return models.Ride{}, domain.ValidationError{Field: "availableSeats", Msg: "must not exceed total seats"}
	}
	if upd.JourneyDate != nil && upd.ReturnDate != nil && *upd.ReturnDate != "" {
		journey, _ := utils.ParseDate(*upd.JourneyDate)
		ret, _ := utils.ParseDate(*upd.ReturnDate)
		if ret.Before(journey) {
			return models.Ride{}, domain.ValidationError{Field: "returnDate", Msg: "must not be before journey date"}
		}
	}

	if err := s.repo().Update(ctx, id, driverID, upd); err != nil {
		return models.Ride{}, err
	}

	utils.LogEvent(s.RequestID, "ride", "update", fmt.Sprintf("ride_id=%d driver_id=%d", id, driverID))
	return s.repo().GetByID(ctx, id)
}

func (s RideService) SetStatus(ctx context.Context, id, driverID int64, status models.RideStatus) (models.Ride, error) {
	if !status.Valid() {
		return models.Ride{}, domain.ValidationError{Field: "status", Msg: "must be available or unavailable"}
	}
	if err := s.repo().SetStatus(ctx, id, driverID, status); err != nil {
		return models.Ride{}, err
	}
	utils.LogEvent(s.RequestID, "ride", "set_status", fmt.Sprintf("ride_id=%d status=%s", id, status))
	return s.repo().GetByID(ctx, id)
}

// Delete removes a ride; the owning driver and admins only.
func (s RideService) Delete(ctx context.Context, actorID int64, actorRole string, id int64) error {
	ride, err := s.repo().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ride.DriverID != actorID && actorRole != models.RoleAdmin {
		return domain.ForbiddenError{Msg: "ride belongs to another driver"}
	}
	if err := s.repo().Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "ride", "delete", fmt.Sprintf("ride_id=%d actor_id=%d", id, actorID))
	return nil
}
