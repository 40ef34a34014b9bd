package shortener

import "context"

// Repository defines the storage contract every backend satisfies.
//
// Find returns found == false with a nil error when no matching, unexpired
// record exists. Save never overwrites or merges an existing record and does
// not detect duplicate hashes. All non-nil errors are *Error values.
type Repository interface {
	Find(ctx context.Context, hash Hash) (shortURL *ShortURL, found bool, err error)
	Save(ctx context.Context, shortURL *ShortURL) (Hash, error)
}
