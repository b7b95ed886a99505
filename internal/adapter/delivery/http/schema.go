package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shorty/internal/entity"
)

const (
	statusError  = "error"
	noURLMessage = "no url present"
)

// shortenRequest is the body of a request to shorten a URL.
type shortenRequest struct {
	URL       string `json:"url" validate:"required"`
	Shortcode string `json:"shortcode"`
}

func (req shortenRequest) toInput() entity.CreateInput {
	return entity.CreateInput{
		Shortcode: req.Shortcode,
		URL:       req.URL,
	}
}

type shortenResponse struct {
	Shortcode string `json:"shortcode"`
}

// statsResponse is the public statistics view of a record.
type statsResponse struct {
	StartDate     time.Time  `json:"startDate"`
	LastSeenDate  *time.Time `json:"lastSeenDate,omitempty"`
	RedirectCount int64      `json:"redirectCount"`
}

func toStatsResponse(rec *entity.Record) statsResponse {
	s := rec.Stats()

	return statsResponse{
		StartDate:     s.StartDate,
		LastSeenDate:  s.LastSeenDate,
		RedirectCount: s.RedirectCount,
	}
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}
	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}
	noURLResponse = errorResponse{
		Status:  statusError,
		Message: noURLMessage,
	}
	invalidShortcodeResponse = errorResponse{
		Status:  statusError,
		Message: "shortcode not valid",
	}
	shortcodeInUseResponse = errorResponse{
		Status:  statusError,
		Message: "the desired shortcode is already in use",
	}
	shortcodeNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "shortcode not found",
	}
	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

func validationErrorResponse(message string, err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: message,
		Errors:  getValidationErrors(err),
	}
}
