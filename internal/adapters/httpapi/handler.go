// Package httpapi exposes the Record Service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"userdesk/internal/query"
	"userdesk/internal/report"
	"userdesk/internal/validation"
	"userdesk/pkg/domain"
)

// TotalCountHeader carries the filtered total on list responses.
const TotalCountHeader = "X-Total-Count"

const maxBodyBytes = 1 << 20

// Users is the Record Service as seen by the handlers.
type Users interface {
	List(ctx context.Context, q query.Query) (query.Page, error)
	Get(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, payload domain.User) (domain.User, error)
	Update(ctx context.Context, id string, patch map[string]any) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

// Handler serves /api/users.
type Handler struct {
	users    Users
	reporter report.Reporter
}

// NewHandler constructs a handler. A nil reporter logs unexpected errors.
func NewHandler(users Users, reporter report.Reporter) *Handler {
	if reporter == nil {
		reporter = report.LogReporter{}
	}
	return &Handler{users: users, reporter: reporter}
}

// Routes mounts the user endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, r, "list", err)
		return
	}
	page, err := h.users.List(r.Context(), q)
	if err != nil {
		h.respondError(w, r, "list", err)
		return
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(page.Total))
	w.Header().Set("Access-Control-Expose-Headers", TotalCountHeader)
	writeJSON(w, http.StatusOK, page.Users)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.respondError(w, r, "create", err)
		return
	}
	payload, err := validation.Create(body)
	if err != nil {
		h.respondError(w, r, "create", err)
		return
	}
	created, err := h.users.Create(r.Context(), payload)
	if err != nil {
		h.respondError(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.respondError(w, r, "update", err)
		return
	}
	patch, err := validation.Update(body)
	if err != nil {
		h.respondError(w, r, "update", err)
		return
	}
	updated, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondError(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

// bodyError is a request body that is not a JSON value.
type bodyError struct {
	Err error
}

func (e *bodyError) Error() string { return fmt.Sprintf("invalid JSON body: %v", e.Err) }

func (e *bodyError) Unwrap() error { return e.Err }

func decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var body any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("body is empty")
		}
		return nil, &bodyError{Err: err}
	}
	if dec.More() {
		return nil, &bodyError{Err: errors.New("unexpected data after JSON value")}
	}
	return body, nil
}
