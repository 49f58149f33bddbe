package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/http/middleware"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/services"
)

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{RequestID: middleware.GetRequestID(c)}
}

type createBookingRequest struct {
	RideID       int64  `json:"rideId" binding:"required"`
	Seats        int    `json:"seats" binding:"required"`
	ContactName  string `json:"contactName" binding:"required"`
	ContactPhone string `json:"contactPhone" binding:"required"`
	Note         string `json:"note"`
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	riderID, _ := middleware.CurrentUser(c)
	booking, err := bookingService(c).Book(c.Request.Context(), riderID, services.BookInput{
		RideID:       req.RideID,
		Seats:        req.Seats,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Note:         req.Note,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// GET /api/bookings/mine
func ListMyBookings(c *gin.Context) {
	riderID, _ := middleware.CurrentUser(c)
	page, limit := PageParams(c)

	bookings, total, err := bookingService(c).ListMine(c.Request.Context(), riderID, page, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings":   bookings,
		"pagination": domain.Pagination{Page: page, PageSize: limit, Total: total}.Clamp(),
	})
}

// GET /api/bookings/driver
func ListDriverBookings(c *gin.Context) {
	driverID, _ := middleware.CurrentUser(c)
	page, limit := PageParams(c)

	bookings, total, err := bookingService(c).ListForDriver(c.Request.Context(), driverID, page, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings":   bookings,
		"pagination": domain.Pagination{Page: page, PageSize: limit, Total: total}.Clamp(),
	})
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	actorID, role := middleware.CurrentUser(c)
	detail, err := bookingService(c).Get(c.Request.Context(), actorID, role, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": detail})
}

// PUT /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	riderID, _ := middleware.CurrentUser(c)
	booking, err := bookingService(c).Cancel(c.Request.Context(), riderID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func transitionHandler(to models.BookingStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := PathID(c)
		if !ok {
			return
		}
		actorID, role := middleware.CurrentUser(c)
		booking, err := bookingService(c).Transition(c.Request.Context(), actorID, role, id, to)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

// PUT /api/bookings/:id/confirm|reject|complete (ride driver or admin)
var (
	ConfirmBooking  = transitionHandler(models.BookingStatusConfirmed)
	RejectBooking   = transitionHandler(models.BookingStatusRejected)
	CompleteBooking = transitionHandler(models.BookingStatusCompleted)
)

// GET /api/bookings/:id/receipt
func GetBookingReceipt(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	actorID, role := middleware.CurrentUser(c)

	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := docs.GenerateReceipt(c.Request.Context(), actorID, role, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
