package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/threadline/internal/creationlink"
)

func newRealmTestRouter(t *testing.T, openCreation bool) (*chi.Mux, *creationlink.Service, *creationlink.MemoryStore) {
	t.Helper()

	store := creationlink.NewMemoryStore()
	svc := creationlink.NewService(store, "https://threadline.example", 7*24*time.Hour, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewRealmHandler(svc, logger, openCreation)

	r := chi.NewRouter()
	r.Get("/create_realm/{key}", h.ShowCreateForm)
	r.Post("/create_realm/{key}", h.SubmitCreateForm)
	r.Get("/create_realm", h.OpenCreateForm)
	r.Post("/create_realm", h.OpenCreate)
	r.Get("/accounts/send_confirm/{email}", h.SendConfirm)

	return r, svc, store
}

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestShowCreateForm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	router, svc, store := newRealmTestRouter(t, false)

	rec1, _, err := svc.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	t.Run("valid key shows the form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/create_realm/"+rec1.Key, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Create a new Threadline organization") {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("viewing does not consume the key", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/create_realm/"+rec1.Key, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if !strings.Contains(w.Body.String(), "Create a new Threadline organization") {
				t.Fatalf("view %d got invalid page", i)
			}
		}
		if err := svc.Validate(ctx, rec1.Key); err != nil {
			t.Errorf("key no longer valid after views: %v", err)
		}
	})

	t.Run("unknown key shows the generic invalid page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/create_realm/"+strings.Repeat("0", 24), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), creationlink.InvalidLinkMessage) {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("expired key shows the same invalid page", func(t *testing.T) {
		expired, _, err := svc.Issue(ctx)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		store.SetCreatedAt(expired.Key, time.Now().Add(-8*24*time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/create_realm/"+expired.Key, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if !strings.Contains(w.Body.String(), creationlink.InvalidLinkMessage) {
			t.Errorf("body = %q", w.Body.String())
		}
	})
}

func TestSubmitCreateForm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	router, svc, _ := newRealmTestRouter(t, false)

	t.Run("submission consumes the key and redirects", func(t *testing.T) {
		rec, _, err := svc.Issue(ctx)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		w := postForm(t, router, "/create_realm/"+rec.Key, url.Values{"email": {"desdemona@acme.example"}})

		if w.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", w.Code)
		}
		loc := w.Header().Get("Location")
		if loc != "/accounts/send_confirm/desdemona@acme.example" {
			t.Errorf("Location = %q", loc)
		}

		// The key is now consumed.
		w2 := postForm(t, router, "/create_realm/"+rec.Key, url.Values{"email": {"desdemona@acme.example"}})
		if w2.Code != http.StatusOK || !strings.Contains(w2.Body.String(), creationlink.InvalidLinkMessage) {
			t.Errorf("second submit: status = %d, body = %q", w2.Code, w2.Body.String())
		}
	})

	t.Run("bad email leaves the key redeemable", func(t *testing.T) {
		rec, _, err := svc.Issue(ctx)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		w := postForm(t, router, "/create_realm/"+rec.Key, url.Values{"email": {"not-an-email"}})
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "valid email") {
			t.Errorf("body = %q", w.Body.String())
		}
		if err := svc.Validate(ctx, rec.Key); err != nil {
			t.Errorf("key consumed by rejected submission: %v", err)
		}
	})

	t.Run("unknown key gets the invalid page", func(t *testing.T) {
		w := postForm(t, router, "/create_realm/"+strings.Repeat("f", 24), url.Values{"email": {"a@b.example"}})
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), creationlink.InvalidLinkMessage) {
			t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
		}
	})
}

func TestOpenRealmCreation(t *testing.T) {
	t.Parallel()

	t.Run("disabled returns 404", func(t *testing.T) {
		router, _, _ := newRealmTestRouter(t, false)

		w := postForm(t, router, "/create_realm", url.Values{"email": {"a@b.example"}})
		if w.Code != http.StatusNotFound {
			t.Errorf("POST status = %d, want 404", w.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/create_realm", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET status = %d, want 404", rec.Code)
		}
	})

	t.Run("enabled allows keyless creation", func(t *testing.T) {
		router, _, _ := newRealmTestRouter(t, true)

		w := postForm(t, router, "/create_realm", url.Values{"email": {"emilia@acme.example"}})
		if w.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", w.Code)
		}
		if w.Header().Get("Location") != "/accounts/send_confirm/emilia@acme.example" {
			t.Errorf("Location = %q", w.Header().Get("Location"))
		}
	})
}

func TestSendConfirm(t *testing.T) {
	t.Parallel()
	router, _, _ := newRealmTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/accounts/send_confirm/bianca@acme.example", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Check your email so we can get started.") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "bianca@acme.example") {
		t.Errorf("body = %q", body)
	}
}
