package handlers_test

import (
	"context"
	"errors"

	"github.com/serroba/url-shortener/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com"

// mockStore is a test double for shortener.Repository that can be configured to return errors.
type mockStore struct {
	saveErr error
	findErr error
	saved   *shortener.ShortURL
}

func (m *mockStore) Save(_ context.Context, shortURL *shortener.ShortURL) (shortener.Hash, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}

	m.saved = shortURL

	return shortURL.Hash, nil
}

func (m *mockStore) Find(_ context.Context, hash shortener.Hash) (*shortener.ShortURL, bool, error) {
	if m.findErr != nil {
		return nil, false, m.findErr
	}

	if m.saved == nil || m.saved.Hash != hash {
		return nil, false, nil
	}

	return m.saved, true, nil
}
