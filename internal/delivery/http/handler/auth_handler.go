package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthHandler issues development tokens. Production tokens come from the
// identity service, signed with the same shared secret; this handler exists
// so local clients can exercise the protected surface.
type AuthHandler struct {
	jwtSecret string
	env       string
}

func NewAuthHandler(jwtSecret, env string) *AuthHandler {
	return &AuthHandler{
		jwtSecret: jwtSecret,
		env:       env,
	}
}

// DevTokenRequest represents a development token request
type DevTokenRequest struct {
	UserID string `json:"user_id" binding:"omitempty,max=64"`
}

// AuthResponse is the response structure
type AuthResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// DevToken handles POST /auth/dev-token
// @Summary Issue a development token
// @Description Issue a signed bearer token without identity verification (dev only)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body DevTokenRequest true "Token request"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/dev-token [post]
func (h *AuthHandler) DevToken(c *gin.Context) {
	if h.env == "production" {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "not found",
		})
		return
	}

	var req DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to sign token",
		})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: expiresAt.Unix(),
	})
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}
