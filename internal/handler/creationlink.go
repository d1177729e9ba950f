package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/threadline/threadline/internal/auth"
	"github.com/threadline/threadline/internal/creationlink"
)

// CreationLinkHandler serves the admin API for issuing creation links.
type CreationLinkHandler struct {
	links  *creationlink.Service
	logger *slog.Logger
}

// NewCreationLinkHandler creates a new CreationLinkHandler.
func NewCreationLinkHandler(links *creationlink.Service, logger *slog.Logger) *CreationLinkHandler {
	return &CreationLinkHandler{
		links:  links,
		logger: logger,
	}
}

type creationLinkResponse struct {
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create handles POST /api/v1/creation_links.
func (h *CreationLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	rec, linkURL, err := h.links.Issue(r.Context())
	if err != nil {
		h.logger.Error("creation_link_issue_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to issue creation link"})
		return
	}

	h.logger.Info("creation_link_issued", "admin_key_id", auth.KeyIDFromContext(r.Context()))

	writeJSON(w, http.StatusCreated, creationLinkResponse{
		URL:       linkURL,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.CreatedAt.Add(h.links.Validity()),
	})
}
