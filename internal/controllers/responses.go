package controllers

import (
	"errors"
	"net/http"
	"strings"
	"vihub/internal/biometrics"
	"vihub/internal/directory"
	"vihub/internal/models"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const maxRequestBodySize = 8 << 20 // 8 MB, biometric payloads are inline base64

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, directory.ErrMissingRequiredField),
		errors.Is(err, biometrics.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, directory.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, directory.ErrRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func idParam(r *http.Request) (uint32, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		return 0, errors.Join(errBadRequest, errors.New("missing id"))
	}
	id, err := cast.ToUint32E(raw)
	if err != nil || id == 0 {
		return 0, errors.Join(errBadRequest, errors.New("invalid id "+raw))
	}
	return id, nil
}
