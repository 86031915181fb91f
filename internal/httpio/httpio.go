// Package httpio holds the JSON plumbing shared by every controller: body
// decoding, request validation and the error envelope.
package httpio

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "arena/internal/errors"
)

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidState      = "INVALID_STATE"
	CodeConflict          = "CONFLICT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeDeadlock          = "DEADLOCK"
	CodeInternal          = "INTERNAL_ERROR"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func WriteJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError maps err to its HTTP status and writes the error envelope.
// Unknown errors are logged and reported as internal.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	status, code, message := http.StatusInternalServerError, CodeInternal, err.Error()
	var details []apperrors.ValidationDetail

	if ve, ok := apperrors.IsValidationError(err); ok {
		status, code, message, details = http.StatusBadRequest, CodeValidation, ve.Message, ve.Details
	} else if nf, ok := apperrors.IsNotFoundError(err); ok {
		status, code, message = http.StatusNotFound, CodeNotFound, nf.Message
	} else if is, ok := apperrors.IsInvalidStateError(err); ok {
		status, code, message = http.StatusBadRequest, CodeInvalidState, is.Message
	} else if ce, ok := apperrors.IsConflictError(err); ok {
		status, code, message = http.StatusBadRequest, CodeConflict, ce.Message
	} else if ise, ok := apperrors.IsInsufficientStockError(err); ok {
		status, code, message = http.StatusBadRequest, CodeInsufficientStock, ise.Message
	} else if de, ok := apperrors.IsDeadlockError(err); ok {
		status, code, message = http.StatusConflict, CodeDeadlock, de.Message
	} else {
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	}

	WriteJSON(w, status, ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, logger)
}

// Decode reads a JSON body into dst and validates it. Every failure comes
// back as a ValidationError.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required", apperrors.ValidationDetail{
				Field:   "body",
				Message: "request body must not be empty",
			})
		}
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return Validate(dst)
}

func Validate(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "body",
			Message: err.Error(),
		})
	}

	details := make([]apperrors.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperrors.ValidationDetail{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return apperrors.NewValidationError("validation failed", details...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte", "min":
		return fe.Field() + " must be >= " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be <= " + fe.Param()
	case "datetime":
		return fe.Field() + " must be a date in the form " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
