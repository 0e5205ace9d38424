package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"introspeechdev/analyzer"
	"introspeechdev/speech"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgInvalidInput     = "Invalid input data"
	msgGenerationFailed = "Failed to generate speech. Please try again."
	msgNotFound         = "Speech request not found"
	msgInvalidID        = "Invalid speech request id"
	msgBodyTooLarge     = "Request body too large"
	msgNarrationOff     = "Narration is not configured"
	msgNarrationFailed  = "Failed to narrate speech. Please try again."
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  []speech.FieldError `json:"errors,omitempty"`
}

type generateResponse struct {
	ID int64 `json:"id"`
	speech.SpeechResult
}

type speechTextRequest struct {
	Speech string `json:"speech"`
}

type analyzeResponse struct {
	Findings   analyzer.Findings   `json:"findings"`
	Commentary analyzer.Commentary `json:"commentary"`
	Text       string              `json:"text"`
}

func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var form speech.FormData
	if !h.decode(w, r, &form) {
		return
	}

	request, result, err := h.service.Generate(r.Context(), form)
	if err != nil {
		h.writeGenerateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{ID: request.ID, SpeechResult: *result})
}

func (h *handlers) regenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	request, result, err := h.service.Regenerate(r.Context(), id)
	if err != nil {
		h.writeGenerateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{ID: request.ID, SpeechResult: *result})
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	request, err := h.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, speech.ErrRequestNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: msgNotFound})
	case err != nil:
		h.logger.Logger(r.Context()).Error("[API] Could not load speech request", zap.Error(err), zap.Int64("id", id))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Failed to load speech request."})
	default:
		writeJSON(w, http.StatusOK, request)
	}
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var body speechTextRequest
	if !h.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Speech) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: msgInvalidInput,
			Errors:  []speech.FieldError{{Field: "speech", Message: "Required"}},
		})
		return
	}

	report := h.service.Analyze(r.Context(), body.Speech)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Findings:   report.Findings,
		Commentary: report.Commentary,
		Text:       report.Commentary.String(),
	})
}

func (h *handlers) audio(w http.ResponseWriter, r *http.Request) {
	if !h.service.CanNarrate() {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Message: msgNarrationOff})
		return
	}

	var body speechTextRequest
	if !h.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Speech) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: msgInvalidInput,
			Errors:  []speech.FieldError{{Field: "speech", Message: "Required"}},
		})
		return
	}

	audio, err := h.service.Narrate(r.Context(), body.Speech)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: msgNarrationFailed})
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (h *handlers) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *speech.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgInvalidInput, Errors: verr.Errors})
	case errors.Is(err, speech.ErrRequestNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: msgNotFound})
	default:
		h.logger.Logger(r.Context()).Error("[API] Speech generation request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: msgGenerationFailed})
	}
}

// decode reads a JSON body into v. It writes the error response itself and
// reports whether the handler should continue.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var (
		typeErr *json.UnmarshalTypeError
		sizeErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sizeErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: msgBodyTooLarge})
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: msgInvalidInput,
			Errors:  []speech.FieldError{{Field: field, Message: "Expected " + typeErr.Type.String()}},
		})
	case errors.Is(err, io.EOF):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: msgInvalidInput,
			Errors:  []speech.FieldError{{Field: "body", Message: "Required"}},
		})
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: msgInvalidInput,
			Errors:  []speech.FieldError{{Field: "body", Message: "Malformed JSON"}},
		})
	}
	h.logger.Logger(r.Context()).Info("[API] Rejected request body", zap.Error(err))
	return false
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgInvalidID})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
