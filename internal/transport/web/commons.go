package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Olprog59/go-prodtrack/internal/app"
	"github.com/Olprog59/go-prodtrack/internal/export"
	"github.com/Olprog59/go-prodtrack/internal/service"
)

// maxBodyBytes caps every JSON request body / Taille maximale d'un corps JSON
const maxBodyBytes = 1 << 20

// Handler is a container for application dependencies that are required by HTTP handlers.
// By embedding the application's dependency injection container, it provides handlers
// with access to services, repositories, and configuration.
type Handler struct {
	container *app.Container
}

// NewHandler creates and returns a new Handler instance.
func NewHandler(container *app.Container) *Handler {
	return &Handler{container: container}
}

// ErrorResponse is a helper function for sending standardized JSON error responses.
// It writes the status code and a JSON body with an "error" key.
func ErrorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": message,
	})
}

// validationResponse adds the offending field to the error body.
func validationResponse(w http.ResponseWriter, verr *service.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error": verr.Error(),
		"field": verr.Field,
	})
}

// jsonResponse sends data as a 200 JSON response.
func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// createdResponse sends data as a 201 JSON response.
func createdResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(data)
}

// messageResponse sends {"message": msg} / Envoie un message simple
func messageResponse(w http.ResponseWriter, msg string) {
	jsonResponse(w, map[string]string{"message": msg})
}

// writeServiceError maps service errors to HTTP status codes / Traduit les erreurs de service en codes HTTP
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		validationResponse(w, verr)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		ErrorResponse(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrAccountLocked):
		ErrorResponse(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		ErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrConflict):
		ErrorResponse(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		ErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a size-limited JSON body into dst. It writes the error
// response itself and returns false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		ErrorResponse(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// pathInt64 parses a positive numeric path parameter.
func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter, def when absent or invalid.
func queryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil {
		return v
	}
	return def
}

// xlsxResponse sends a workbook as an attachment / Envoie un classeur en pièce jointe
func xlsxResponse(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
