package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"imagestudio/internal/domain"
	"imagestudio/internal/imagegen"
	"imagestudio/internal/infra"
	"imagestudio/internal/middleware"
)

// DefaultMaxUploadBytes caps multipart and JSON bodies when the config gives
// no limit.
const DefaultMaxUploadBytes int64 = 20 << 20

type App struct {
	Service        *imagegen.Service
	Logger         *infra.Logger
	ServiceName    string
	MaxUploadBytes int64
}

func NewApp(svc *imagegen.Service, logger *infra.Logger, serviceName string, maxUpload int64) *App {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &App{Service: svc, Logger: logger, ServiceName: serviceName, MaxUploadBytes: maxUpload}
}

// envelope is the body of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, message string, data any) {
	a.json(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, envelope{Success: false, Error: msg, Code: code})
}

// result writes a generation result. Failed results keep their metadata in
// data so clients can see what was attempted.
func (a *App) result(w http.ResponseWriter, r *http.Request, message string, res domain.GenerationResult) {
	if res.Success {
		a.ok(w, message, res)
		return
	}
	kind := domain.KindOf(res.Err)
	status := statusForKind(kind)
	a.Logger.Warn().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("kind", string(kind)).
		Int("status", status).
		Msg("http: generation failed")
	a.json(w, status, envelope{Success: false, Error: res.Error, Code: codeForKind(kind), Data: res})
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindTemplate, domain.KindInput:
		return http.StatusBadRequest
	case domain.KindAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeForKind(kind domain.Kind) string {
	switch kind {
	case domain.KindValidation:
		return "validation_error"
	case domain.KindTemplate:
		return "template_error"
	case domain.KindInput:
		return "input_error"
	case domain.KindAPI:
		return "api_error"
	case domain.KindStorage:
		return "storage_error"
	default:
		return "internal"
	}
}

// decodeJSON reads a bounded JSON body into v.
func (a *App) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}
