package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/url",
		Summary:       "Create short URL",
		Description:   "Creates a short URL, optionally expiring after ttl seconds.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusLocked, http.StatusInternalServerError},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{hash}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short hash.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusNotFound, http.StatusLocked, http.StatusInternalServerError},
	}, urlHandler.RedirectToURL)
}
