// Package handler exposes the HTTP API: session lifecycle endpoints and the
// payment validation gate.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tably/tably/internal/auth"
	"github.com/tably/tably/internal/middleware"
	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/service"
	"github.com/tably/tably/internal/split"
	"github.com/tably/tably/internal/storage"
)

// SessionHandler serves the session lifecycle endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type createSessionRequest struct {
	TableName  string              `json:"tableName" binding:"required"`
	Currency   string              `json:"currency"`
	TotalCents int64               `json:"totalCents" binding:"min=0"`
	Items      []createItemRequest `json:"items"`
	HostName   string              `json:"hostName" binding:"required"`
}

type createItemRequest struct {
	Name           string `json:"name" binding:"required"`
	UnitPriceCents int64  `json:"unitPriceCents" binding:"min=0"`
	Quantity       int64  `json:"quantity" binding:"min=1"`
}

type createSessionResponse struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	JoinCode      string `json:"joinCode"`
	Token         string `json:"token"`
}

// Create opens a session for a table.
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request body", nil)
		return
	}

	items := make([]service.ItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.ItemInput{Name: it.Name, UnitPriceCents: it.UnitPriceCents, Quantity: it.Quantity}
	}

	created, err := h.sessions.Create(c.Request.Context(), req.TableName, req.Currency, req.TotalCents, items, req.HostName)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "failed to create session", nil)
		return
	}

	c.JSON(http.StatusCreated, createSessionResponse{
		SessionID:     created.Session.ID,
		ParticipantID: created.Host.ID,
		JoinCode:      created.JoinCode,
		Token:         created.Token,
	})
}

type joinSessionRequest struct {
	JoinCode    string `json:"joinCode" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
}

type joinSessionResponse struct {
	ParticipantID string `json:"participantId"`
	Token         string `json:"token"`
}

// Join adds a diner to an existing session.
func (h *SessionHandler) Join(c *gin.Context) {
	var req joinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request body", nil)
		return
	}

	joined, err := h.sessions.Join(c.Request.Context(), c.Param("id"), req.JoinCode, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			abortWithError(c, http.StatusNotFound, err, "SESSION_NOT_FOUND", "session not found", nil)
		case errors.Is(err, auth.ErrInvalidJoinCode):
			abortWithError(c, http.StatusForbidden, err, "INVALID_JOIN_CODE", "invalid join code", nil)
		default:
			abortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "failed to join session", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, joinSessionResponse{
		ParticipantID: joined.Participant.ID,
		Token:         joined.Token,
	})
}

// requireSessionMatch checks that the path session matches the token's scope
// and returns the authenticated participant ID.
func requireSessionMatch(c *gin.Context) (participantID string, ok bool) {
	participantID, pok := middleware.ParticipantID(c)
	tokenSession, sok := middleware.SessionID(c)
	if !pok || !sok {
		abortWithError(c, http.StatusUnauthorized, nil, "UNAUTHORIZED", "authentication required", nil)
		return "", false
	}
	if tokenSession != c.Param("id") {
		abortWithError(c, http.StatusForbidden, nil, "SESSION_MISMATCH", "token is not valid for this session", nil)
		return "", false
	}
	return participantID, true
}

// Heartbeat records a liveness ping for the authenticated participant.
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	participantID, ok := requireSessionMatch(c)
	if !ok {
		return
	}

	if err := h.sessions.Heartbeat(c.Request.Context(), c.Param("id"), participantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, err, "PARTICIPANT_NOT_FOUND", "participant not found", nil)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "failed to record heartbeat", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// Leave records an explicit leave signal. Sendable via sendBeacon on page
// unload, so it takes no body.
func (h *SessionHandler) Leave(c *gin.Context) {
	participantID, ok := requireSessionMatch(c)
	if !ok {
		return
	}

	if err := h.sessions.Leave(c.Request.Context(), c.Param("id"), participantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, err, "PARTICIPANT_NOT_FOUND", "participant not found", nil)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "failed to leave session", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

type sessionViewResponse struct {
	SessionID    string            `json:"sessionId"`
	TableName    string            `json:"tableName"`
	TotalCents   int64             `json:"totalCents"`
	Currency     string            `json:"currency"`
	Items        []itemView        `json:"items"`
	ActiveCount  int               `json:"activeCount"`
	BaseAmount   int64             `json:"baseAmountCents"`
	Remainder    int64             `json:"remainderCents"`
	Participants []participantView `json:"participants"`
}

type itemView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int64  `json:"quantity"`
}

type participantView struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"displayName"`
	IsActive      bool     `json:"isActive"`
	IsHost        bool     `json:"isHost"`
	SplitMethod   string   `json:"splitMethod"`
	PaymentStatus string   `json:"paymentStatus"`
	ShareCents    int64    `json:"shareCents"`
	TipCents      int64    `json:"tipCents"`
	TotalCents    int64    `json:"totalCents"`
	Formatted     string   `json:"formatted"`
	SelectedItems []string `json:"selectedItemIds,omitempty"`
}

// View returns the full session state a client renders.
func (h *SessionHandler) View(c *gin.Context) {
	if _, ok := requireSessionMatch(c); !ok {
		return
	}

	view, err := h.sessions.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, err, "SESSION_NOT_FOUND", "session not found", nil)
			return
		}
		abortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "failed to load session", nil)
		return
	}

	resp := sessionViewResponse{
		SessionID:   view.Session.ID,
		TableName:   view.Session.TableName,
		TotalCents:  view.Bill.TotalCents,
		Currency:    view.Bill.Currency,
		ActiveCount: view.ActiveCount,
		BaseAmount:  view.SplitResult.BaseAmountCents,
		Remainder:   view.SplitResult.RemainderCents,
	}
	for _, it := range view.Bill.Items {
		resp.Items = append(resp.Items, itemView{
			ID:             it.ID,
			Name:           it.Name,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
		})
	}
	for _, pv := range view.Participants {
		resp.Participants = append(resp.Participants, participantView{
			ID:            pv.Participant.ID,
			DisplayName:   pv.Participant.DisplayName,
			IsActive:      pv.Participant.IsActive,
			IsHost:        pv.Participant.IsHost,
			SplitMethod:   string(pv.Participant.SplitMethod),
			PaymentStatus: string(pv.Participant.PaymentStatus),
			ShareCents:    pv.ShareCents,
			TipCents:      pv.TipCents,
			TotalCents:    pv.TotalCents,
			Formatted:     pv.Formatted,
			SelectedItems: pv.Participant.SelectedItemIDs,
		})
	}
	c.JSON(http.StatusOK, resp)
}

type selectionRequest struct {
	SplitMethod      string   `json:"splitMethod" binding:"required"`
	FixedAmountCents int64    `json:"fixedAmountCents" binding:"min=0"`
	SelectedItemIDs  []string `json:"selectedItemIds"`
	TipPercentage    float64  `json:"tipPercentage" binding:"min=0"`
}

// UpdateSelection persists the authenticated participant's own split choice.
func (h *SessionHandler) UpdateSelection(c *gin.Context) {
	participantID, ok := requireSessionMatch(c)
	if !ok {
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request body", nil)
		return
	}

	err := h.sessions.UpdateSelection(c.Request.Context(), c.Param("id"), participantID, service.SelectionInput{
		SplitMethod:      models.SplitMethod(req.SplitMethod),
		FixedAmountCents: req.FixedAmountCents,
		SelectedItemIDs:  req.SelectedItemIDs,
		TipPercentage:    req.TipPercentage,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			abortWithError(c, http.StatusNotFound, err, "PARTICIPANT_NOT_FOUND", "participant not found", nil)
		case errors.Is(err, split.ErrAmountExceedsUnclaimed), errors.Is(err, service.ErrUnknownSplitMethod):
			abortWithError(c, http.StatusBadRequest, err, "INVALID_SELECTION", err.Error(), nil)
		default:
			abortWithError(c, http.StatusInternalServerError, err, "INTERNAL", "failed to update selection", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
