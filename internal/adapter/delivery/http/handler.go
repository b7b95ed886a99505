package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shorty/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type recordUseCase interface {
	Create(ctx context.Context, in entity.CreateInput) (*entity.Record, error)
	Find(ctx context.Context, shortcode string) (*entity.Record, bool, error)
	RecordVisit(ctx context.Context, rec *entity.Record) (*entity.Record, error)
}

type recordHandler struct {
	useCase  recordUseCase
	validate *validator.Validate
}

func newRecordHandler(useCase recordUseCase, validate *validator.Validate) *recordHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &recordHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, serverErrorResponse)
}

func (h *recordHandler) shorten(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(noURLMessage, err))
		return
	}

	rec, err := h.useCase.Create(r.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidURL):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, noURLResponse)
		case errors.Is(err, entity.ErrInvalidShortcode):
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, invalidShortcodeResponse)
		case errors.Is(err, entity.ErrShortcodeInUse):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, shortcodeInUseResponse)
		default:
			serverError(w, r, err)
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, shortenResponse{Shortcode: rec.Shortcode})
}

func (h *recordHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortcode := chi.URLParam(r, "shortcode")

	rec, ok, err := h.useCase.Find(r.Context(), shortcode)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, shortcodeNotFoundResponse)
		return
	}

	rec, err = h.useCase.RecordVisit(r.Context(), rec)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, shortcodeNotFoundResponse)
			return
		}

		serverError(w, r, err)
		return
	}

	http.Redirect(w, r, rec.URL, http.StatusFound)
}

func (h *recordHandler) stats(w http.ResponseWriter, r *http.Request) {
	shortcode := chi.URLParam(r, "shortcode")

	rec, ok, err := h.useCase.Find(r.Context(), shortcode)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, shortcodeNotFoundResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toStatsResponse(rec))
}
