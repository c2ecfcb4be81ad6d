package transport

import (
	"errors"
	"net/http"

	"nautia-api/internal/auth"
	"nautia-api/internal/middleware"
	"nautia-api/internal/repository"
	"nautia-api/internal/service"

	"go.uber.org/zap"
)

// handleServiceError maps service and repository errors onto HTTP statuses.
// Authorization failures must reach the client distinctly: the UI shows a
// login prompt on 401 and an access-denied screen on 403, never a spinner.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		middleware.RespondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, service.ErrBotSenderForbidden),
		errors.Is(err, service.ErrInvalidSessionToken):
		middleware.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUnknownSender):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case isNotFound(err):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrProductNotFound) ||
		errors.Is(err, repository.ErrCategoryNotFound) ||
		errors.Is(err, repository.ErrBlogPostNotFound) ||
		errors.Is(err, repository.ErrEventNotFound) ||
		errors.Is(err, repository.ErrAppointmentNotFound) ||
		errors.Is(err, repository.ErrLeadNotFound) ||
		errors.Is(err, repository.ErrSessionNotFound)
}

// decodeRequest decodes and validates a JSON body, writing the error
// response itself. Returns false when the handler should stop.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
