package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/qrbill"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not_found")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// apiError is a request-level validation failure with a stable code the
// client can branch on.
type apiError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

func newValidationError(field, code, message string) error {
	return &apiError{Field: field, Code: code, Message: message}
}

func invalidRequestError() error {
	return &apiError{Code: "invalid_request", Message: "invalid request body"}
}

// AbortWithError maps domain errors onto HTTP statuses and writes the
// standard error envelope.
func AbortWithError(c *gin.Context, err error) {
	var validation *apiError
	if errors.As(err, &validation) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validation})
		return
	}

	status := statusFor(err)
	body := gin.H{"error": gin.H{"code": errorCode(err, status)}}
	c.AbortWithStatusJSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, contactdomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, invoicedomain.ErrNotDraft),
		errors.Is(err, invoicedomain.ErrNotPayable),
		errors.Is(err, invoicedomain.ErrInvalidTransition),
		errors.Is(err, contactdomain.ErrHasInvoices):
		return http.StatusConflict
	case errors.Is(err, invoicedomain.ErrMissingIBAN),
		errors.Is(err, qrbill.ErrInvalidIBAN),
		errors.Is(err, qrbill.ErrUnsupportedIBAN),
		errors.Is(err, qrbill.ErrReferenceIBAN),
		errors.Is(err, qrbill.ErrMissingCreditor),
		errors.Is(err, qrbill.ErrInvalidCurrency),
		errors.Is(err, qrbill.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case isInvoiceValidationError(err),
		isContactValidationError(err),
		isSettingsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal_error"
	}
	return err.Error()
}

func isInvoiceValidationError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidOrganization),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidContact),
		errors.Is(err, invoicedomain.ErrInvalidCurrency),
		errors.Is(err, invoicedomain.ErrInvalidType),
		errors.Is(err, invoicedomain.ErrInvalidLineItem),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrCurrencyMismatch),
		errors.Is(err, qrbill.ErrInvalidReference):
		return true
	default:
		return false
	}
}

func isContactValidationError(err error) bool {
	switch {
	case errors.Is(err, contactdomain.ErrInvalidOrganization),
		errors.Is(err, contactdomain.ErrInvalidID),
		errors.Is(err, contactdomain.ErrInvalidKind),
		errors.Is(err, contactdomain.ErrInvalidName):
		return true
	default:
		return false
	}
}

func isSettingsValidationError(err error) bool {
	switch {
	case errors.Is(err, settingsdomain.ErrInvalidOrganization),
		errors.Is(err, settingsdomain.ErrInvalidCurrency),
		errors.Is(err, settingsdomain.ErrInvalidTaxRate),
		errors.Is(err, settingsdomain.ErrInvalidIBAN):
		return true
	default:
		return false
	}
}

// parseOptionalTime accepts RFC 3339 timestamps or bare dates. A bare date
// with endOfDay set resolves to the last instant of that day, so inclusive
// "to" filters behave the way callers expect.
func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		utc := ts.UTC()
		return &utc, nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	ts := day.UTC()
	if endOfDay {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return &ts, nil
}
