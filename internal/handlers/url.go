package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/serroba/url-shortener/internal/analytics"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service            *shortener.Service
	baseURL            string
	publishURLCreated  messaging.Publish[analytics.URLCreatedEvent]
	publishURLAccessed messaging.Publish[analytics.URLAccessedEvent]
	logger             *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service *shortener.Service,
	baseURL string,
	publishURLCreated messaging.Publish[analytics.URLCreatedEvent],
	publishURLAccessed messaging.Publish[analytics.URLAccessedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:            service,
		baseURL:            baseURL,
		publishURLCreated:  publishURLCreated,
		publishURLAccessed: publishURLAccessed,
		logger:             logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, err := h.service.Shorten(ctx, req.Body.URL, req.Body.TTL)
	if err != nil {
		h.logStorageError("failed to save url", "", err)

		return nil, storageError(err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLCreatedEvent{
		Hash:      string(shortURL.Hash),
		Source:    shortURL.Source,
		TTL:       shortURL.TTL,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if shortURL.CreatedAt != nil {
		event.CreatedAt = *shortURL.CreatedAt
	}

	if err := h.publishURLCreated(event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("hash", event.Hash),
			zap.Error(err),
		)
	}

	fullShortURL := fmt.Sprintf("%s/%s", h.baseURL, shortURL.Hash)

	resp := &CreateShortURLResponse{}
	resp.Location = fullShortURL
	resp.Body.Hash = string(shortURL.Hash)
	resp.Body.ShortURL = fullShortURL
	resp.Body.Source = shortURL.Source
	resp.Body.TTL = shortURL.TTL

	if expiresAt, ok := shortURL.ExpiresAt(); ok {
		resp.Body.ExpiresAt = &expiresAt
	}

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	shortURL, err := h.service.Resolve(ctx, shortener.Hash(req.Hash))
	if err != nil {
		h.logStorageError("failed to resolve url", req.Hash, err)

		return nil, storageError(err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLAccessedEvent{
		Hash:       req.Hash,
		AccessedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err = h.publishURLAccessed(event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("hash", event.Hash),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: shortURL.Source,
	}, nil
}

func (h *URLHandler) logStorageError(msg, hash string, err error) {
	kind := shortener.KindOf(err)
	fields := []zap.Field{zap.Stringer("kind", kind), zap.Error(err)}

	if hash != "" {
		fields = append(fields, zap.String("hash", hash))
	}

	switch kind {
	case shortener.KindNotFound:
		h.logger.Debug(msg, fields...)
	case shortener.KindTemporarilyUnavailable:
		h.logger.Warn(msg, fields...)
	default:
		h.logger.Error(msg, fields...)
	}
}
