package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	profileUseCase *profile.ProfileUseCase
}

func NewProfileHandler(profileUseCase *profile.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// GetMe handles GET /profile/me
// @Summary Get my profile bundle
// @Description Get current user's profile, preferences and intake answers
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} profile.Bundle
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	bundle, err := h.profileUseCase.GetBundle(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "profile not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to get profile",
		})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// UpsertProfile handles PUT /profile/me
// @Summary Upsert my profile
// @Description Create or replace the current user's profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpsertProfileRequest true "Profile data"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me [put]
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req profile.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	result, err := h.profileUseCase.UpsertProfile(c.Request.Context(), userID.(string), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to save profile",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpsertPreferences handles PUT /profile/me/preferences
// @Summary Upsert my preferences
// @Description Create or replace the current user's languages and availability
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpsertPreferencesRequest true "Preference data"
// @Success 200 {object} domain.PreferenceSet
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me/preferences [put]
func (h *ProfileHandler) UpsertPreferences(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req profile.UpsertPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	result, err := h.profileUseCase.UpsertPreferences(c.Request.Context(), userID.(string), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to save preferences",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpsertIntake handles PUT /profile/me/intake
// @Summary Upsert my intake answers
// @Description Save questionnaire answers; completed=true stamps completion
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body profile.UpsertIntakeRequest true "Intake data"
// @Success 200 {object} domain.IntakeProfile
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /profile/me/intake [put]
func (h *ProfileHandler) UpsertIntake(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req profile.UpsertIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	result, err := h.profileUseCase.UpsertIntake(c.Request.Context(), userID.(string), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to save intake",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
