package httpadapter

import (
	"net/http"

	"github.com/tkohara/gikai-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrUpstreamInvalidResponse):
		return http.StatusBadGateway
	default:
		// Configuration errors and anything unclassified stay internal.
		return http.StatusInternalServerError
	}
}
