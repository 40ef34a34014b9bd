package shortener

import "context"

// Service creates and resolves short URLs against a single Repository.
type Service struct {
	store   Repository
	factory *Factory
}

// NewService creates a new shortening service.
func NewService(store Repository, factory *Factory) *Service {
	return &Service{
		store:   store,
		factory: factory,
	}
}

// Shorten builds a record for source and persists it.
func (s *Service) Shorten(ctx context.Context, source string, ttl *int64) (*ShortURL, error) {
	shortURL := s.factory.New(source, ttl)

	hash, err := s.store.Save(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	shortURL.Hash = hash

	return shortURL, nil
}

// Resolve looks up a record by hash. A missing or expired record yields a
// KindNotFound error so callers can tell it apart from other failures.
func (s *Service) Resolve(ctx context.Context, hash Hash) (*ShortURL, error) {
	shortURL, found, err := s.store.Find(ctx, hash)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, E("resolve", KindNotFound, ErrNotFound)
	}

	return shortURL, nil
}
