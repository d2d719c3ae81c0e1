// Package api exposes the lifetrack HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"example.com/lifetrack/internal/accounts"
	"example.com/lifetrack/internal/auth"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/persistence"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 5 << 20

// Handler coordinates HTTP requests with the accounts service.
type Handler struct {
	service *accounts.Service
	bearer  auth.Middleware
	admin   auth.AdminMiddleware
	log     *logger.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *accounts.Service, tokens auth.Config, adminKey string, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		bearer:  auth.NewMiddleware(tokens),
		admin:   auth.NewAdminMiddleware(adminKey),
		log:     log,
	}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.login).Methods(http.MethodPost)

	data := api.PathPrefix("/data").Subrouter()
	data.Use(h.bearer.Wrap)
	data.HandleFunc("/{key}", h.getData).Methods(http.MethodGet)
	data.HandleFunc("/{key}", h.saveData).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.admin.Wrap)
	admin.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	admin.HandleFunc("/users", h.users).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}/data", h.userData).Methods(http.MethodGet)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// CredentialsRequest is the payload for register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserView is the public shape of an account.
type UserView struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// DataResponse wraps a stored blob; Data is null when nothing is stored.
type DataResponse struct {
	Data json.RawMessage `json:"data"`
}

// UsersResponse lists accounts for the admin dashboard.
type UsersResponse struct {
	Users      []UserView `json:"users"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// DataEntryView is one blob in the admin user-data view.
type DataEntryView struct {
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UserDataResponse maps data keys to their blobs.
type UserDataResponse struct {
	Data map[string]DataEntryView `json:"data"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.service.Register)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.service.Login)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, username, password string) (accounts.Session, error)) {
	var req CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	session, err := fn(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{
		Token: session.Token,
		User:  UserView{ID: session.User.ID, Username: session.User.Username},
	})
}

func (h *Handler) getData(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}
	value, err := h.service.Load(r.Context(), claims.UserID, mux.Vars(r)["key"])
	if err != nil {
		h.fail(w, err)
		return
	}
	if value == nil {
		value = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, DataResponse{Data: value})
}

func (h *Handler) saveData(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	if err := h.service.Save(r.Context(), claims.UserID, mux.Vars(r)["key"], body); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 500 {
				parsed = 500
			}
			limit = parsed
		}
	}
	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cursor")
		return
	}

	users, next, err := h.service.Users(r.Context(), cursor, limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	resp := UsersResponse{Users: make([]UserView, 0, len(users)), NextCursor: persistence.EncodeCursor(next)}
	for _, u := range users {
		created := u.CreatedAt
		resp.Users = append(resp.Users, UserView{ID: u.ID, Username: u.Username, CreatedAt: &created})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) userData(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	entries, err := h.service.UserData(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	resp := UserDataResponse{Data: make(map[string]DataEntryView, len(entries))}
	for _, e := range entries {
		resp.Data[e.Key] = DataEntryView{Value: e.Value, UpdatedAt: e.UpdatedAt}
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail maps service errors onto statuses and client-facing messages.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounts.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Username and password required")
	case errors.Is(err, accounts.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, accounts.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "Invalid data key")
	case errors.Is(err, accounts.ErrInvalidData):
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
	case errors.Is(err, accounts.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		h.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
