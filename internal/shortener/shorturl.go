package shortener

import "time"

// Hash is the short identifier of a URL. It is an opaque token, not a digest.
type Hash string

// ShortURL represents a shortened URL record.
//
// TTL is expressed in seconds. CreatedAt is only needed by backends that
// evaluate expiry themselves; backends with native expiry may drop it.
type ShortURL struct {
	Source    string     `json:"source"`
	Hash      Hash       `json:"hash"`
	TTL       *int64     `json:"ttl,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// IsExpired reports whether the record must no longer be returned at now.
// Records without a TTL never expire. Must be evaluated at read time.
func (s *ShortURL) IsExpired(now time.Time) bool {
	expiresAt, ok := s.ExpiresAt()
	if !ok {
		return false
	}

	return now.After(expiresAt)
}

// ExpiresAt returns the instant after which the record is expired.
// The second return value is false when the record does not expire.
func (s *ShortURL) ExpiresAt() (time.Time, bool) {
	if s.TTL == nil || s.CreatedAt == nil {
		return time.Time{}, false
	}

	return s.CreatedAt.Add(time.Duration(*s.TTL) * time.Second), true
}

// WithoutCreatedAt returns a copy of the record with no creation timestamp,
// for backends that delegate expiry to the store.
func (s *ShortURL) WithoutCreatedAt() *ShortURL {
	c := *s
	c.CreatedAt = nil

	return &c
}

// CodeGenerator generates unique short codes.
type CodeGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Factory builds new records from inbound requests.
type Factory struct {
	generate CodeGenerator
	now      Clock
}

// NewFactory creates a record factory. A nil clock defaults to time.Now.
func NewFactory(generator CodeGenerator, clock Clock) *Factory {
	if clock == nil {
		clock = time.Now
	}

	return &Factory{
		generate: generator,
		now:      clock,
	}
}

// New creates a record with a fresh hash and the creation time captured from
// the factory clock. ttl may be nil for records that never expire.
func (f *Factory) New(source string, ttl *int64) *ShortURL {
	createdAt := f.now().UTC()

	var ttlCopy *int64

	if ttl != nil {
		v := *ttl
		ttlCopy = &v
	}

	return &ShortURL{
		Source:    source,
		Hash:      Hash(f.generate()),
		TTL:       ttlCopy,
		CreatedAt: &createdAt,
	}
}
