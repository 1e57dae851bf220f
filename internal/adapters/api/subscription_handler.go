package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/validation"
)

// SubscriptionRequest represents the HTTP request for creating subscriptions
type SubscriptionRequest struct {
	ExternalID string   `json:"external_id" binding:"required,max=64"`
	City       string   `json:"city" binding:"required,max=128"`
	Type       string   `json:"type" binding:"required,subtype"`
	Times      []string `json:"times" binding:"required,min=1,dive,clock"`
}

// SubscriptionResponse is a stored subscription as returned by the API
type SubscriptionResponse struct {
	ID          uint   `json:"id"`
	ExternalID  string `json:"external_id"`
	City        string `json:"city"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

type SubscriptionsResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

type TypesResponse struct {
	Types []subscription.TypeInfo `json:"types"`
}

type RemoveResponse struct {
	Removed int64 `json:"removed"`
}

// listTypes handles GET /api/types requests
func (s *HTTPServerAdapter) listTypes(c *gin.Context) {
	types, err := s.subscriptionUseCase.ListTypes(c.Request.Context())
	if err != nil {
		slog.Error("List types error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, TypesResponse{Types: types})
}

// addSubscriptions handles POST /api/subscriptions requests
func (s *HTTPServerAdapter) addSubscriptions(c *gin.Context) {
	var httpReq SubscriptionRequest
	if err := c.ShouldBindJSON(&httpReq); err != nil {
		slog.Debug("Request binding error", "error", err)
		s.handleError(c, bindingError(err, httpReq.Type))
		return
	}

	subs, err := s.subscriptionUseCase.AddSubscriptions(c.Request.Context(), subscription.AddManyParams{
		ExternalID: httpReq.ExternalID,
		City:       httpReq.City,
		TypeCode:   httpReq.Type,
		Times:      httpReq.Times,
	})
	if err != nil {
		slog.Error("Subscription error", "error", err, "externalID", httpReq.ExternalID, "city", httpReq.City)
		s.handleError(c, err)
		return
	}

	slog.Debug("Subscriptions stored", "externalID", httpReq.ExternalID, "count", len(subs))
	c.JSON(http.StatusCreated, toSubscriptionsResponse(subs))
}

// listSubscriptions handles GET /api/subscriptions/:external_id requests
func (s *HTTPServerAdapter) listSubscriptions(c *gin.Context) {
	externalID := c.Param("external_id")

	subs, err := s.subscriptionUseCase.ListSubscriptions(c.Request.Context(), externalID)
	if err != nil {
		slog.Error("List subscriptions error", "error", err, "externalID", externalID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionsResponse(subs))
}

// removeSubscriptions handles DELETE /api/subscriptions/:external_id requests.
// Query parameters city, type and time narrow the selection.
func (s *HTTPServerAdapter) removeSubscriptions(c *gin.Context) {
	params := subscription.RemoveParams{
		ExternalID: c.Param("external_id"),
		City:       c.Query("city"),
		TypeCode:   c.Query("type"),
		Time:       c.Query("time"),
	}
	if params.Time != "" && !validation.IsValidClockTime(params.Time) {
		s.handleError(c, errors.NewValidationError("time must be in HH:MM format"))
		return
	}

	removed, err := s.subscriptionUseCase.RemoveSubscriptions(c.Request.Context(), params)
	if err != nil {
		slog.Error("Remove subscriptions error", "error", err, "externalID", params.ExternalID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, RemoveResponse{Removed: removed})
}

// bindingError keeps the catalog error distinct from generic format errors
func bindingError(err error, typeCode string) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "subtype" {
				return errors.NewUnknownSubscriptionTypeError(typeCode)
			}
		}
	}
	return errors.NewValidationError("Invalid request format")
}

func toSubscriptionsResponse(subs []*subscription.Subscription) SubscriptionsResponse {
	resp := SubscriptionsResponse{Subscriptions: make([]SubscriptionResponse, 0, len(subs))}
	for _, sub := range subs {
		resp.Subscriptions = append(resp.Subscriptions, SubscriptionResponse{
			ID:          sub.ID,
			ExternalID:  sub.ExternalID,
			City:        sub.City,
			Type:        sub.Type.String(),
			Description: sub.TypeDescription,
			Time:        sub.Time,
		})
	}
	return resp
}
