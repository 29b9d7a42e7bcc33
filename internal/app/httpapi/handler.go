// Package httpapi exposes the REST surface of the offer service.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	app "github.com/aptos-community/offer-service/internal/app"
	"github.com/aptos-community/offer-service/internal/app/metrics"
	"github.com/aptos-community/offer-service/internal/app/registry"
	"github.com/aptos-community/offer-service/internal/app/services/claims"
	"github.com/aptos-community/offer-service/internal/app/storage"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a router exposing the offer and claim API. Routes that
// mutate offers or enumerate claims require authentication; offer display and
// the claim flow itself are public so the front end can drive them, and the
// public routes carry per-client rate limiting instead.
func NewHandler(application *app.Application, auth *Authenticator, limiter *RateLimiter) http.Handler {
	h := &handler{app: application}

	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/offers", limiter.Limit(h.listOffers)).Methods(http.MethodGet)
	r.HandleFunc("/offers/{slug}", limiter.Limit(h.getOffer)).Methods(http.MethodGet)
	r.HandleFunc("/offers/{slug}", auth.Require(h.patchOffer)).Methods(http.MethodPatch)
	r.HandleFunc("/offers/{slug}/claims", limiter.Limit(h.submitClaim)).Methods(http.MethodPost)
	r.HandleFunc("/offers/{slug}/claims", auth.Require(h.listOfferClaims)).Methods(http.MethodGet)
	r.HandleFunc("/claims", limiter.Limit(h.listRecipientClaims)).Methods(http.MethodGet)
	r.HandleFunc("/claims/{id}", auth.Require(h.getClaim)).Methods(http.MethodGet)

	return r
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listOffers(w http.ResponseWriter, r *http.Request) {
	slugs := h.app.Registry.Slugs()
	records := make([]interface{}, 0, len(slugs))
	for _, slug := range slugs {
		rec, err := h.app.Registry.Resolve(slug)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) getOffer(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	rec, err := h.app.Registry.Resolve(slug)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) patchOffer(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var payload struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Enabled == nil {
		writeError(w, http.StatusBadRequest, errors.New("enabled is required"))
		return
	}

	rec, err := h.app.Registry.SetEnabled(slug, *payload.Enabled)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) submitClaim(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var payload struct {
		Recipient string `json:"recipient"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.app.Claims.Submit(r.Context(), slug, payload.Recipient)
	if err != nil {
		// A non-empty ID means the claim was persisted and the mint
		// submission itself failed.
		if c.ID != "" {
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error": err.Error(),
				"claim": c,
			})
			return
		}
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) listOfferClaims(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	list, err := h.app.Claims.ListByOffer(r.Context(), slug)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) listRecipientClaims(w http.ResponseWriter, r *http.Request) {
	recipient := r.URL.Query().Get("recipient")
	list, err := h.app.Claims.ListByRecipient(r.Context(), recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getClaim(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := h.app.Claims.Get(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// statusFor maps service errors onto HTTP status codes. Registry and storage
// misses are both 404, conflicts are 409 and everything else is treated as a
// bad request.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrOfferDisabled),
		errors.Is(err, claims.ErrAlreadyClaimed),
		errors.Is(err, claims.ErrNoSigningKey),
		errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
