package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/repositories"
)

// GET /api/admin/users
func AdminListUsers(c *gin.Context) {
	page, limit := PageParams(c)
	users := repositories.UserRepository{}
	list, total, err := users.List(c.Request.Context(), page, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      list,
		"pagination": domain.Pagination{Page: page, PageSize: limit, Total: total}.Clamp(),
	})
}

type userStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/admin/users/:id/status
func AdminSetUserStatus(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var req userStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Status != models.UserStatusActive && req.Status != models.UserStatusBanned {
		respondError(c, http.StatusBadRequest, "validation_error", "status must be active or banned")
		return
	}

	users := repositories.UserRepository{}
	if err := users.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user status updated"})
}

// GET /api/admin/bookings
func AdminListBookings(c *gin.Context) {
	page, limit := PageParams(c)
	bookings := repositories.BookingRepository{}
	list, total, err := bookings.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings":   list,
		"pagination": domain.Pagination{Page: page, PageSize: limit, Total: total}.Clamp(),
	})
}

// GET /api/admin/stats
func AdminStats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := repositories.UserRepository{}.Count(ctx)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rides, err := repositories.RideRepository{}.Count(ctx)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	bookings, seatsSold, err := repositories.BookingRepository{}.SeatStats(ctx)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":     users,
		"rides":     rides,
		"bookings":  bookings,
		"seatsSold": seatsSold,
	})
}

// POST /api/admin/reconcile-seat-releases
func AdminReconcileSeatReleases(c *gin.Context) {
	released, err := bookingService(c).ReconcileSeatReleases(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}
