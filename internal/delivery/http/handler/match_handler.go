package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moai-app/moai-backend/internal/domain"
	"github.com/moai-app/moai-backend/internal/usecase/batch"
	"github.com/moai-app/moai-backend/internal/usecase/consent"
	"github.com/moai-app/moai-backend/internal/usecase/query"
)

type MatchHandler struct {
	batchUseCase   *batch.BatchUseCase
	consentUseCase *consent.ConsentUseCase
	queryUseCase   *query.QueryUseCase
}

func NewMatchHandler(
	batchUseCase *batch.BatchUseCase,
	consentUseCase *consent.ConsentUseCase,
	queryUseCase *query.QueryUseCase,
) *MatchHandler {
	return &MatchHandler{
		batchUseCase:   batchUseCase,
		consentUseCase: consentUseCase,
		queryUseCase:   queryUseCase,
	}
}

// GenerateRequest represents a manual batch generation request
type GenerateRequest struct {
	BatchWeek string `json:"batch_week" binding:"omitempty,datetime=2006-01-02"`
}

// ConsentRequest represents a consent submission
type ConsentRequest struct {
	Response *bool `json:"response" binding:"required"`
}

// MutualResponse reports the consent state of a candidate
type MutualResponse struct {
	CandidateID string `json:"candidate_id"`
	Mutual      bool   `json:"mutual"`
}

// Generate handles POST /matches/generate
// @Summary Generate my weekly matches
// @Description Score the eligible pool and persist this week's slate; idempotent per week
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body GenerateRequest false "Optional batch week override"
// @Success 200 {object} batch.GenerateResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/generate [post]
func (h *MatchHandler) Generate(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "invalid request body",
			})
			return
		}
	}

	batchWeek := req.BatchWeek
	if batchWeek == "" {
		batchWeek = batch.BatchWeekKey(time.Now())
	}

	result, err := h.batchUseCase.GenerateWeeklyMatches(c.Request.Context(), userID.(string), batchWeek)
	if err != nil {
		if errors.Is(err, domain.ErrMissingPrerequisite) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: "profile, preferences and completed intake are required before matching",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to generate matches",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Pending handles GET /matches/pending
// @Summary List my pending introductions
// @Description List open candidates, newest first; expired ones are filtered
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.MatchCandidate
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/pending [get]
func (h *MatchHandler) Pending(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	candidates, err := h.queryUseCase.PendingCandidates(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "failed to list pending matches",
		})
		return
	}

	c.JSON(http.StatusOK, candidates)
}

// Consent handles POST /matches/:candidate_id/consent
// @Summary Respond to an introduction
// @Description Record yes/no; a mutual yes opens the conversation
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param candidate_id path string true "Candidate ID"
// @Param request body ConsentRequest true "Consent response"
// @Success 200 {object} consent.ConsentResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/{candidate_id}/consent [post]
func (h *MatchHandler) Consent(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	candidateID := c.Param("candidate_id")

	var req ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	result, err := h.consentUseCase.RecordConsent(c.Request.Context(), candidateID, userID.(string), *req.Response)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCandidateNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "candidate not found",
			})
		case errors.Is(err, domain.ErrConsentNotAllowed):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error: "not a party to this candidate",
			})
		case errors.Is(err, domain.ErrCandidateResolved):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error: "candidate is no longer open",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to record consent",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Mutual handles GET /matches/:candidate_id/mutual
// @Summary Check mutual consent
// @Description Report whether both parties of a candidate said yes
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param candidate_id path string true "Candidate ID"
// @Success 200 {object} MutualResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/{candidate_id}/mutual [get]
func (h *MatchHandler) Mutual(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return
	}

	candidateID := c.Param("candidate_id")

	mutual, err := h.queryUseCase.MutualStatus(c.Request.Context(), candidateID, userID.(string))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCandidateNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "candidate not found",
			})
		case errors.Is(err, domain.ErrConsentNotAllowed):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error: "not a party to this candidate",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "failed to check mutual consent",
			})
		}
		return
	}

	c.JSON(http.StatusOK, MutualResponse{
		CandidateID: candidateID,
		Mutual:      mutual,
	})
}
