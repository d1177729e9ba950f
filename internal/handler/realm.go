package handler

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/threadline/internal/creationlink"
	"github.com/threadline/threadline/internal/middleware"
)

// RealmHandler serves the realm-creation redemption flow.
type RealmHandler struct {
	links        *creationlink.Service
	logger       *slog.Logger
	openCreation bool
}

// NewRealmHandler creates a new RealmHandler. openCreation allows realm
// creation without a link, mirroring the OPEN_REALM_CREATION setting.
func NewRealmHandler(links *creationlink.Service, logger *slog.Logger, openCreation bool) *RealmHandler {
	return &RealmHandler{
		links:        links,
		logger:       logger,
		openCreation: openCreation,
	}
}

const pageShell = `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
%s
</body>
</html>
`

func createFormPage(action, errorText string) string {
	var sb strings.Builder
	sb.WriteString("<h1>Create a new Threadline organization</h1>\n")
	if errorText != "" {
		sb.WriteString(fmt.Sprintf("<p class=\"error\">%s</p>\n", html.EscapeString(errorText)))
	}
	sb.WriteString(fmt.Sprintf(
		"<form method=\"post\" action=\"%s\">\n<label for=\"email\">Email</label>\n<input type=\"email\" id=\"email\" name=\"email\" required>\n<button type=\"submit\">Create organization</button>\n</form>\n",
		html.EscapeString(action),
	))
	return fmt.Sprintf(pageShell, "Create a new Threadline organization", sb.String())
}

func invalidLinkPage() string {
	body := fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(creationlink.InvalidLinkMessage))
	return fmt.Sprintf(pageShell, "Invalid creation link", body)
}

// ShowCreateForm handles GET /create_realm/{key}. Validation is
// read-only here; the key is only consumed on form submission.
func (h *RealmHandler) ShowCreateForm(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.links.Validate(r.Context(), key); err != nil {
		if creationlink.IsInvalid(err) {
			h.logger.Info("creation_link_invalid", "reason", err.Error())
			writeHTML(w, http.StatusOK, invalidLinkPage())
			return
		}
		h.logger.Error("creation_link_validate_error", "error", err)
		writeHTML(w, http.StatusInternalServerError, invalidLinkPage())
		return
	}

	writeHTML(w, http.StatusOK, createFormPage(creationlink.CreationPath+key, ""))
}

// SubmitCreateForm handles POST /create_realm/{key}. The key is
// consumed exactly once; a second submission of the same link lands on
// the invalid page.
func (h *RealmHandler) SubmitCreateForm(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	email, ok := h.parseEmail(r)
	if !ok {
		// Leave the key unconsumed so the operator can retry.
		if err := h.links.Validate(r.Context(), key); err != nil {
			writeHTML(w, http.StatusOK, invalidLinkPage())
			return
		}
		writeHTML(w, http.StatusOK, createFormPage(creationlink.CreationPath+key, "Please enter a valid email address."))
		return
	}

	if err := h.links.Redeem(r.Context(), key); err != nil {
		if creationlink.IsInvalid(err) {
			h.logger.Info("creation_link_rejected", "reason", err.Error())
			writeHTML(w, http.StatusOK, invalidLinkPage())
			return
		}
		h.logger.Error("creation_link_redeem_error", "error", err)
		writeHTML(w, http.StatusInternalServerError, invalidLinkPage())
		return
	}

	h.logger.Info("creation_link_redeemed", "email_domain", emailDomain(email))
	http.Redirect(w, r, "/accounts/send_confirm/"+url.PathEscape(email), http.StatusFound)
}

// OpenCreate handles POST /create_realm without a key. Only allowed
// when open realm creation is enabled; the link core stays out of this
// path entirely.
func (h *RealmHandler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	if !h.openCreation {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "realm creation is by invitation only"})
		return
	}

	email, ok := h.parseEmail(r)
	if !ok {
		writeHTML(w, http.StatusOK, createFormPage("/create_realm", "Please enter a valid email address."))
		return
	}

	h.logger.Info("open_realm_creation", "email_domain", emailDomain(email))
	http.Redirect(w, r, "/accounts/send_confirm/"+url.PathEscape(email), http.StatusFound)
}

// OpenCreateForm handles GET /create_realm without a key.
func (h *RealmHandler) OpenCreateForm(w http.ResponseWriter, r *http.Request) {
	if !h.openCreation {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "realm creation is by invitation only"})
		return
	}
	writeHTML(w, http.StatusOK, createFormPage("/create_realm", ""))
}

// SendConfirm handles GET /accounts/send_confirm/{email}.
func (h *RealmHandler) SendConfirm(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if unescaped, err := url.PathUnescape(email); err == nil {
		email = unescaped
	}

	var sb strings.Builder
	sb.WriteString("<h1>Check your email so we can get started.</h1>\n")
	if email != "" {
		sb.WriteString(fmt.Sprintf("<p>We sent a confirmation link to %s.</p>\n", html.EscapeString(email)))
	}
	writeHTML(w, http.StatusOK, fmt.Sprintf(pageShell, "Check your email", sb.String()))
}

func (h *RealmHandler) parseEmail(r *http.Request) (string, bool) {
	if err := r.ParseForm(); err != nil {
		return "", false
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	if err := middleware.ValidateEmail(email); err != nil {
		return "", false
	}
	return email, true
}

func emailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[at+1:]
	}
	return ""
}
