package httpserver

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"salon-client/internal/domain"
)

type errorBody struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

// writeFailure maps the client error taxonomy onto BFF status codes.
func writeFailure(w http.ResponseWriter, err error) {
	var (
		ve *domain.ValidationError
		rl *domain.RateLimitError
		te *domain.TimeoutError
		he *domain.HTTPError
		ae *domain.APIError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: ve.Error(), Fields: ve.Fields})
	case errors.As(err, &rl):
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		}
		writeError(w, http.StatusTooManyRequests, rl.Error())
	case errors.As(err, &te):
		writeError(w, http.StatusGatewayTimeout, te.Error())
	case errors.As(err, &he):
		writeError(w, he.Status, he.Error())
	case errors.As(err, &ae):
		writeError(w, http.StatusBadGateway, ae.Message)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	default:
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}
