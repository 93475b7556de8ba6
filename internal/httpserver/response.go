package httpserver

import (
	"errors"
	"net/http"

	"bakereserve-storefront/internal/domain"
	checkoutsvc "bakereserve-storefront/internal/service/checkout"
	"bakereserve-storefront/internal/storeapi"
	"github.com/gin-gonic/gin"
)

// AuthPath is where the client sends a user whose session is gone.
const AuthPath = "/auth"

// envelope is the body shape of every API response.
type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respondJSON(c *gin.Context, code int, message string, data any) {
	c.JSON(code, envelope{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// respondError maps err onto a status code and a user-facing message.
func respondError(c *gin.Context, err error) {
	code, message, data := classify(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, envelope{Status: false, Message: message, Data: data})
}

func classify(err error) (int, string, any) {
	var (
		verr    *domain.ValidationError
		stepErr *checkoutsvc.PaymentStepError
		apiErr  *storeapi.APIError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error(), gin.H{"field": verr.Field}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error(), gin.H{"redirect": AuthPath}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusConflict, err.Error(), gin.H{"confirmRequired": true}
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict, err.Error(), nil
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, err.Error(), nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.As(err, &stepErr):
		return http.StatusBadGateway, stepErr.Error(), gin.H{"step": stepErr.Step, "orderIds": stepErr.OrderIDs}
	case errors.As(err, &apiErr):
		return upstreamStatus(apiErr.StatusCode), apiErr.Message, upstreamData(apiErr.StatusCode)
	default:
		return http.StatusInternalServerError, storeapi.DefaultErrorMessage, nil
	}
}

// upstreamStatus passes client errors through and folds server errors into 502.
func upstreamStatus(code int) int {
	if code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}

func upstreamData(code int) any {
	if code == http.StatusUnauthorized {
		return gin.H{"redirect": AuthPath}
	}
	return nil
}
