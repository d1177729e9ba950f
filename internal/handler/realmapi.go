package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/threadline/threadline/internal/cache"
	"github.com/threadline/threadline/internal/metrics"
	"github.com/threadline/threadline/internal/middleware"
	"github.com/threadline/threadline/internal/model"
	"github.com/threadline/threadline/internal/repository"
)

// RealmStore is the repository surface the realm API needs.
type RealmStore interface {
	CreateRealm(ctx context.Context, realm *model.Realm) error
	GetRealmByStringID(ctx context.Context, stringID string) (*model.Realm, error)
	ListRealms(ctx context.Context) ([]*model.Realm, error)
	DeactivateRealm(ctx context.Context, id string) error
}

// RealmAPIHandler serves the admin realm directory API.
type RealmAPIHandler struct {
	repo    RealmStore
	cache   *cache.Cache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewRealmAPIHandler creates a new RealmAPIHandler. cache may be nil,
// in which case every lookup goes to the database.
func NewRealmAPIHandler(repo RealmStore, cacheClient *cache.Cache, recorder metrics.Recorder, logger *slog.Logger) *RealmAPIHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RealmAPIHandler{
		repo:    repo,
		cache:   cacheClient,
		metrics: recorder,
		logger:  logger,
	}
}

type createRealmRequest struct {
	StringID     string   `json:"string_id"`
	Name         string   `json:"name"`
	Domains      []string `json:"domains,omitempty"`
	CreatorEmail string   `json:"creator_email,omitempty"`
}

// Create handles POST /api/v1/realms.
func (h *RealmAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRealmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	req.StringID = strings.ToLower(strings.TrimSpace(req.StringID))
	req.Name = strings.TrimSpace(req.Name)
	if err := middleware.ValidateSubdomain(req.StringID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	realm := &model.Realm{
		ID:           uuid.NewString(),
		StringID:     req.StringID,
		Name:         req.Name,
		Domains:      req.Domains,
		CreatorEmail: req.CreatorEmail,
	}

	if err := h.repo.CreateRealm(r.Context(), realm); err != nil {
		if errors.Is(err, repository.ErrRealmExists) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a realm with this string_id already exists"})
			return
		}
		h.logger.Error("realm_create_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create realm"})
		return
	}

	h.metrics.IncRealmCreated()
	h.invalidate(r.Context(), realm.StringID)
	h.logger.Info("realm_created", "string_id", realm.StringID)

	writeJSON(w, http.StatusCreated, realm)
}

// Get handles GET /api/v1/realms/{string_id}. Lookups go through the
// Redis cache; misses fall back to Postgres and backfill the cache.
func (h *RealmAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	stringID := chi.URLParam(r, "string_id")

	if h.cache != nil {
		if cached, err := h.cache.GetRealm(r.Context(), stringID); err == nil {
			h.metrics.IncRealmCacheHit()
			writeJSON(w, http.StatusOK, cached.ToRealm(stringID))
			return
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("realm_cache_error", "error", err)
		}
		h.metrics.IncRealmCacheMiss()
	}

	realm, err := h.repo.GetRealmByStringID(r.Context(), stringID)
	if err != nil {
		if errors.Is(err, repository.ErrRealmNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "realm not found"})
			return
		}
		h.logger.Error("realm_get_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up realm"})
		return
	}

	if h.cache != nil {
		if err := h.cache.SetRealm(r.Context(), realm); err != nil {
			h.logger.Warn("realm_cache_set_error", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, realm)
}

// List handles GET /api/v1/realms.
func (h *RealmAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	realms, err := h.repo.ListRealms(r.Context())
	if err != nil {
		h.logger.Error("realm_list_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list realms"})
		return
	}
	if realms == nil {
		realms = []*model.Realm{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"realms": realms})
}

// Deactivate handles DELETE /api/v1/realms/{string_id}.
func (h *RealmAPIHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	stringID := chi.URLParam(r, "string_id")

	realm, err := h.repo.GetRealmByStringID(r.Context(), stringID)
	if err != nil {
		if errors.Is(err, repository.ErrRealmNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "realm not found"})
			return
		}
		h.logger.Error("realm_get_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up realm"})
		return
	}

	if err := h.repo.DeactivateRealm(r.Context(), realm.ID); err != nil {
		if errors.Is(err, repository.ErrRealmNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "realm not found"})
			return
		}
		h.logger.Error("realm_deactivate_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to deactivate realm"})
		return
	}

	h.invalidate(r.Context(), stringID)
	h.logger.Info("realm_deactivated", "string_id", stringID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RealmAPIHandler) invalidate(ctx context.Context, stringID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteRealm(ctx, stringID); err != nil {
		h.logger.Warn("realm_cache_invalidate_error", "error", err)
	}
}
