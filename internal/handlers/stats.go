package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/analytics"
	"go.uber.org/zap"
)

// StatsReader loads aggregated analytics for a short URL.
type StatsReader interface {
	Stats(ctx context.Context, hash string) (*analytics.Stats, error)
}

// StatsHandler serves recorded analytics for short URLs.
type StatsHandler struct {
	reader StatsReader
	logger *zap.Logger
}

func NewStatsHandler(reader StatsReader, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{reader: reader, logger: logger}
}

// StatsRequest is the request for a short URL's analytics.
type StatsRequest struct {
	Hash string `doc:"The short hash" example:"V1StGXR8_Z5jdHi6B-myT" path:"hash"`
}

// StatsResponse reports what the analytics consumer recorded for a short URL.
type StatsResponse struct {
	Body struct {
		Hash           string           `doc:"The short hash"                json:"hash"`
		Source         string           `doc:"The original URL"              json:"source,omitempty"`
		CreatedAt      *time.Time       `doc:"When the short URL was created" json:"createdAt,omitempty"`
		Clicks         int64            `doc:"Number of redirects served"    json:"clicks"`
		LastAccessedAt *time.Time       `doc:"When the last redirect happened" json:"lastAccessedAt,omitempty"`
		Referrers      map[string]int64 `doc:"Redirect counts per referrer"  json:"referrers"`
	}
}

func (h *StatsHandler) GetStats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	stats, err := h.reader.Stats(ctx, req.Hash)
	if err != nil {
		h.logger.Error("failed to load stats", zap.String("hash", req.Hash), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load stats")
	}

	if stats.Source == "" && stats.Clicks == 0 {
		return nil, huma.Error404NotFound("no stats recorded for " + req.Hash)
	}

	resp := &StatsResponse{}
	resp.Body.Hash = stats.Hash
	resp.Body.Source = stats.Source
	resp.Body.Clicks = stats.Clicks
	resp.Body.Referrers = stats.Referrers

	if !stats.CreatedAt.IsZero() {
		resp.Body.CreatedAt = &stats.CreatedAt
	}

	if !stats.LastAccessedAt.IsZero() {
		resp.Body.LastAccessedAt = &stats.LastAccessedAt
	}

	return resp, nil
}

// RegisterStatsRoutes registers the analytics read routes.
func RegisterStatsRoutes(api huma.API, statsHandler *StatsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/stats/{hash}",
		Summary:     "Get short URL analytics",
		Tags:        []string{"Analytics"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, statsHandler.GetStats)
}
