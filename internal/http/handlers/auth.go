package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	intconfig "github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/config"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/http/middleware"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/repositories"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// Register creates a rider or driver account. Admin accounts are
// provisioned out of band.
func Register(env intconfig.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if !BindJSONOrError(c, &req) {
			return
		}

		role := strings.ToLower(strings.TrimSpace(req.Role))
		if role == "" {
			role = models.RoleUser
		}
		if role != models.RoleUser && role != models.RoleDriver {
			respondError(c, http.StatusBadRequest, "validation_error", "role must be user or driver")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			RespondDomainError(c, domain.InternalError{Msg: "failed to hash password", Err: err})
			return
		}

		user := models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:        strings.TrimSpace(req.Phone),
			PasswordHash: string(hash),
			Role:         role,
			Status:       models.UserStatusActive,
		}

		users := repositories.UserRepository{}
		id, err := users.Create(c.Request.Context(), &user)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		user.ID = id

		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(env intconfig.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !BindJSONOrError(c, &req) {
			return
		}

		users := repositories.UserRepository{}
		user, err := users.GetByEmail(c.Request.Context(), strings.ToLower(req.Email))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthenticated", "wrong email or password")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			respondError(c, http.StatusUnauthorized, "unauthenticated", "wrong email or password")
			return
		}
		if user.Status != models.UserStatusActive {
			respondError(c, http.StatusForbidden, "forbidden", "account is banned")
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": user.ID,
			"role":    user.Role,
			"exp":     time.Now().Add(env.TokenTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(env.JWTSecret))
		if err != nil {
			RespondDomainError(c, domain.InternalError{Msg: "failed to sign token", Err: err})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": signed, "user": user})
	}
}

// Me returns the authenticated user's record.
func Me(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	users := repositories.UserRepository{}
	user, err := users.GetByID(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
