package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/repositories"
)

// GET /api/locations?q=dha&limit=10
func ListLocations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	repo := repositories.LocationRepository{}
	locations, err := repo.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}
