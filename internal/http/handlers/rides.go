package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/http/middleware"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/services"
)

func rideService(c *gin.Context) services.RideService {
	return services.RideService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/rides
func ListRides(c *gin.Context) {
	page, limit := PageParams(c)
	filter := models.RideFilter{
		From:     c.Query("from"),
		To:       c.Query("to"),
		Date:     c.Query("date"),
		Category: models.RideCategory(c.Query("category")),
		Status:   models.RideStatus(c.Query("status")),
		Page:     page,
		PageSize: limit,
	}

	rides, total, err := rideService(c).Search(c.Request.Context(), filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rides":      rides,
		"pagination": domain.Pagination{Page: page, PageSize: limit, Total: total}.Clamp(),
	})
}

// GET /api/rides/:id
func GetRide(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	ride, err := rideService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

type createRideRequest struct {
	RouteFrom      string `json:"routeFrom" binding:"required"`
	RouteTo        string `json:"routeTo" binding:"required"`
	JourneyDate    string `json:"journeyDate" binding:"required"`
	ReturnDate     string `json:"returnDate"`
	Category       string `json:"category" binding:"required"`
	PricePerSeat   int64  `json:"pricePerSeat" binding:"required"`
	VehicleModel   string `json:"vehicleModel"`
	TotalSeats     int    `json:"totalSeats" binding:"required"`
	AvailableSeats *int   `json:"availableSeats"`
	ImageURL       string `json:"imageUrl"`
}

// POST /api/rides (driver)
func CreateRide(c *gin.Context) {
	var req createRideRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	driverID, _ := middleware.CurrentUser(c)
	ride, err := rideService(c).Create(c.Request.Context(), driverID, services.RideInput{
		RouteFrom:      req.RouteFrom,
		RouteTo:        req.RouteTo,
		JourneyDate:    req.JourneyDate,
		ReturnDate:     req.ReturnDate,
		Category:       models.RideCategory(req.Category),
		PricePerSeat:   req.PricePerSeat,
		VehicleModel:   req.VehicleModel,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ride": ride})
}

// PUT /api/rides/:id (owner)
func UpdateRide(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var upd models.RideUpdate
	if !BindJSONOrError(c, &upd) {
		return
	}

	driverID, _ := middleware.CurrentUser(c)
	ride, err := rideService(c).Update(c.Request.Context(), id, driverID, upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

type rideStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/rides/:id/status (owner)
func SetRideStatus(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var req rideStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	driverID, _ := middleware.CurrentUser(c)
	ride, err := rideService(c).SetStatus(c.Request.Context(), id, driverID, models.RideStatus(req.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ride": ride})
}

// DELETE /api/rides/:id (owner or admin)
func DeleteRide(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	actorID, role := middleware.CurrentUser(c)
	if err := rideService(c).Delete(c.Request.Context(), actorID, role, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ride deleted"})
}
