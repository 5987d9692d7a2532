package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/visearch/internal/domain"
)

// errorHandler maps one domain sentinel to a transport response.
type errorHandler func(err error) (status int, code string, ok bool)

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(err error) (int, string, bool) {
		if errors.Is(err, sentinel) {
			return status, code, true
		}
		return 0, "", false
	}
}

// Ordered: more specific sentinels first.
var domainErrorHandlers = []errorHandler{
	sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeDimMismatch),
	sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
	sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeNotFound),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
	sentinelHandler(domain.ErrIndexingBusy, http.StatusConflict, codeIndexingBusy),
	sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeProviderError),
	sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
}

// handleDomainError maps a use case error to a status code. Messages for 5xx
// responses stay generic so upstream details never leak to clients.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, handle := range domainErrorHandlers {
		status, code, ok := handle(err)
		if !ok {
			continue
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("Upstream failure",
				zap.String("path", r.URL.Path), zap.Error(err))
			writeError(w, status, code, safeMessage(code))
			return
		}
		writeError(w, status, code, err.Error())
		return
	}

	s.logger.Error("Unhandled error",
		zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
}

func safeMessage(code string) string {
	switch code {
	case codeProviderError:
		return "embedding provider unavailable"
	case codeStoreUnavailable:
		return "vector store unavailable"
	default:
		return "internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
