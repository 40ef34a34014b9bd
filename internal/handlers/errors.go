package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/shortener"
)

// retryAfterSeconds is advertised to clients that hit a busy backend.
const retryAfterSeconds = "1"

// StatusForKind maps a storage failure kind to an HTTP status code.
func StatusForKind(kind shortener.Kind) int {
	switch kind {
	case shortener.KindNotFound:
		return http.StatusNotFound
	case shortener.KindTemporarilyUnavailable:
		return http.StatusLocked
	case shortener.KindErrorOnSave, shortener.KindUndefined:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// storageError converts a storage failure into a huma error. Busy backends
// add a Retry-After header.
func storageError(err error) error {
	kind := shortener.KindOf(err)
	status := StatusForKind(kind)

	humaErr := huma.NewError(status, kind.String())

	if kind == shortener.KindTemporarilyUnavailable {
		return huma.ErrorWithHeaders(humaErr, http.Header{
			"Retry-After": []string{retryAfterSeconds},
		})
	}

	return humaErr
}
