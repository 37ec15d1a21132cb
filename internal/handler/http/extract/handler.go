// Package extract provides the HTTP handler for the order-intent extraction
// endpoint.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"mangwale-nlu/internal/domain/entity"
	"mangwale-nlu/internal/handler/http/respond"
	extractUC "mangwale-nlu/internal/usecase/extract"
)

// maxMessageLength bounds the raw text accepted for extraction. Order
// messages are short chat turns; anything longer is truncated input from a
// misbehaving client.
const maxMessageLength = 2000

// Service is the part of the extraction use case the handler needs.
type Service interface {
	Extract(ctx context.Context, text string) (*entity.ExtractionResult, error)
}

// Handler serves POST /v1/extract.
type Handler struct {
	Svc Service
}

// request is the JSON body of an extraction request.
type request struct {
	Text string `json:"text"`
}

// ServeHTTP parses the request, runs the extraction pipeline, and writes the
// structured result. A failed pipeline still yields 200 with the degraded
// result; only malformed requests produce error statuses.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid json body"))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	if len(text) > maxMessageLength {
		respond.SafeError(w, http.StatusBadRequest, errors.New("text must be at most 2000 bytes"))
		return
	}

	result, err := h.Svc.Extract(r.Context(), text)
	if err != nil {
		// Only validation reaches here; pipeline failures come back as a
		// degraded result, not an error.
		if errors.Is(err, extractUC.ErrEmptyText) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "extraction failed", err))
		return
	}

	respond.JSON(w, http.StatusOK, result)
}
