package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tably/tably/internal/middleware"
	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/reconcile"
	"github.com/tably/tably/internal/service"
)

// PaymentHandler serves the payment validation gate.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// validateRequest is the wire shape of a payment request snapshot.
// ExpectedParticipantCount and BillTotalCents are required only for
// DYNAMIC_EQUAL.
type validateRequest struct {
	SessionID                string `json:"sessionId" binding:"required"`
	ParticipantID            string `json:"participantId" binding:"required"`
	AmountCents              *int64 `json:"amountCents" binding:"required"`
	SplitMethod              string `json:"splitMethod" binding:"required"`
	ExpectedParticipantCount int    `json:"expectedParticipantCount"`
	BillTotalCents           int64  `json:"billTotalCents"`
}

type acceptanceResponse struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	AmountCents   int64  `json:"amountCents"`
	SplitMethod   string `json:"splitMethod"`
	ValidatedAt   int64  `json:"validatedAt"`
}

type countMismatchDetail struct {
	ExpectedCount int `json:"expectedCount"`
	ActualCount   int `json:"actualCount"`
}

type invalidAmountDetail struct {
	ProvidedAmount        int64 `json:"providedAmount"`
	ExpectedBaseAmount    int64 `json:"expectedBaseAmount"`
	ExpectedWithRemainder int64 `json:"expectedWithRemainder"`
}

// Validate accepts a payment request snapshot, runs the reconciliation guard
// against live session state, and returns accept or reject with a structured
// reason. Input-shape problems are rejected before any reconciliation runs.
func (h *PaymentHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request body", nil)
		return
	}

	method := models.SplitMethod(req.SplitMethod)
	if !method.Valid() {
		abortWithError(c, http.StatusBadRequest, nil, "INVALID_REQUEST", "unknown split method", nil)
		return
	}
	if *req.AmountCents < 0 {
		abortWithError(c, http.StatusBadRequest, nil, "INVALID_REQUEST", "amountCents must be non-negative", nil)
		return
	}
	if method == models.SplitDynamicEqual {
		if req.ExpectedParticipantCount <= 0 {
			abortWithError(c, http.StatusBadRequest, nil, "INVALID_REQUEST",
				"expectedParticipantCount is required for DYNAMIC_EQUAL", nil)
			return
		}
		if req.BillTotalCents < 0 {
			abortWithError(c, http.StatusBadRequest, nil, "INVALID_REQUEST", "billTotalCents must be non-negative", nil)
			return
		}
	}

	// The snapshot may only be submitted by the participant it names.
	participantID, _ := middleware.ParticipantID(c)
	sessionID, _ := middleware.SessionID(c)
	if participantID != req.ParticipantID || sessionID != req.SessionID {
		abortWithError(c, http.StatusForbidden, nil, "SESSION_MISMATCH", "token does not match the snapshot", nil)
		return
	}

	acceptance, verdict, err := h.payments.Validate(c.Request.Context(), reconcile.Snapshot{
		SessionID:                req.SessionID,
		ParticipantID:            req.ParticipantID,
		AmountCents:              *req.AmountCents,
		SplitMethod:              method,
		ExpectedParticipantCount: req.ExpectedParticipantCount,
		BillTotalCents:           req.BillTotalCents,
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "validation failed", nil)
		return
	}

	if verdict != nil {
		var detail any
		switch verdict.Reason {
		case reconcile.ReasonParticipantCountMismatch:
			detail = countMismatchDetail{ExpectedCount: verdict.ExpectedCount, ActualCount: verdict.ActualCount}
		case reconcile.ReasonInvalidAmount:
			detail = invalidAmountDetail{
				ProvidedAmount:        verdict.ProvidedAmount,
				ExpectedBaseAmount:    verdict.ExpectedBaseAmount,
				ExpectedWithRemainder: verdict.ExpectedWithRemainder,
			}
		}
		abortWithError(c, http.StatusConflict, nil, string(verdict.Reason), verdict.Message, detail)
		return
	}

	c.JSON(http.StatusOK, acceptanceResponse{
		SessionID:     acceptance.SessionID,
		ParticipantID: acceptance.ParticipantID,
		AmountCents:   acceptance.AmountCents,
		SplitMethod:   string(acceptance.SplitMethod),
		ValidatedAt:   acceptance.ValidatedAt,
	})
}
