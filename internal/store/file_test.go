package store_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempLogPath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "db.txt")
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()

	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	require.NoError(t, err)
}

func TestOpenFileStore(t *testing.T) {
	t.Run("creates the file when absent", func(t *testing.T) {
		path := tempLogPath(t)

		s, err := store.OpenFileStore(path)
		require.NoError(t, err)
		defer func() { _ = s.Shutdown() }()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("fails for an unreachable path", func(t *testing.T) {
		_, err := store.OpenFileStore(filepath.Join(t.TempDir(), "missing", "db.txt"))

		assert.Error(t, err)
	})
}

func TestFileStore_Save(t *testing.T) {
	t.Run("appends one json object per line", func(t *testing.T) {
		path := tempLogPath(t)
		s, err := store.OpenFileStore(path)
		require.NoError(t, err)

		createdAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		_, err = s.Save(context.Background(), &shortener.ShortURL{
			Source: "https://example.com", Hash: "abc123", TTL: ttl(2), CreatedAt: &createdAt,
		})
		require.NoError(t, err)

		_, err = s.Save(context.Background(), &shortener.ShortURL{Source: "https://other.com", Hash: "def456"})
		require.NoError(t, err)
		require.NoError(t, s.Shutdown())

		f, err := os.Open(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		var lines []string

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}

		require.Len(t, lines, 2)
		assert.JSONEq(t,
			`{"source":"https://example.com","hash":"abc123","ttl":2,"created_at":"2024-01-01T12:00:00Z"}`,
			lines[0],
		)
		assert.JSONEq(t, `{"source":"https://other.com","hash":"def456"}`, lines[1])
	})

	t.Run("records survive reopening", func(t *testing.T) {
		path := tempLogPath(t)
		s, err := store.OpenFileStore(path, store.WithFileSync())
		require.NoError(t, err)

		_, err = s.Save(context.Background(), &shortener.ShortURL{Source: "https://example.com", Hash: "abc123"})
		require.NoError(t, err)
		require.NoError(t, s.Shutdown())

		s, err = store.OpenFileStore(path)
		require.NoError(t, err)
		defer func() { _ = s.Shutdown() }()

		got, found, err := s.Find(context.Background(), "abc123")

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "https://example.com", got.Source)
	})

	t.Run("returns error on save when file is closed", func(t *testing.T) {
		s, err := store.OpenFileStore(tempLogPath(t))
		require.NoError(t, err)
		require.NoError(t, s.Shutdown())

		_, err = s.Save(context.Background(), &shortener.ShortURL{Source: "https://example.com", Hash: "abc123"})

		assert.Equal(t, shortener.KindErrorOnSave, shortener.KindOf(err))
	})
}

func TestFileStore_Find(t *testing.T) {
	t.Run("skips corrupted lines", func(t *testing.T) {
		path := tempLogPath(t)
		writeLines(t, path,
			`{"source":"https://first.com","hash":"aaa"}`,
			`{"source":"https://broken.com","hash":"abc`,
			`not json at all`,
			``,
			`{"source":"https://example.com","hash":"abc123"}`,
		)

		s, err := store.OpenFileStore(path)
		require.NoError(t, err)
		defer func() { _ = s.Shutdown() }()

		got, found, err := s.Find(context.Background(), "abc123")

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "https://example.com", got.Source)
	})

	t.Run("tolerates a torn final line without newline", func(t *testing.T) {
		path := tempLogPath(t)
		err := os.WriteFile(path, []byte(`{"source":"https://example.com","hash":"abc123"}`+"\n"+`{"source":"ht`), 0o644)
		require.NoError(t, err)

		s, err := store.OpenFileStore(path)
		require.NoError(t, err)
		defer func() { _ = s.Shutdown() }()

		got, found, err := s.Find(context.Background(), "abc123")

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "https://example.com", got.Source)

		_, err = s.Save(context.Background(), &shortener.ShortURL{Source: "https://next.com", Hash: "next"})
		require.NoError(t, err)

		next, found, err := s.Find(context.Background(), "next")

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "https://next.com", next.Source)
	})

	t.Run("starts a fresh line after a torn tail", func(t *testing.T) {
		path := tempLogPath(t)
		err := os.WriteFile(path, []byte(`{"source":"ht`), 0o644)
		require.NoError(t, err)

		s, err := store.OpenFileStore(path)
		require.NoError(t, err)

		ctx := context.Background()
		_, err = s.Save(ctx, &shortener.ShortURL{Source: "https://one.com", Hash: "one"})
		require.NoError(t, err)
		_, err = s.Save(ctx, &shortener.ShortURL{Source: "https://two.com", Hash: "two"})
		require.NoError(t, err)
		require.NoError(t, s.Shutdown())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, `{"source":"ht`, lines[0])
		assert.Contains(t, lines[1], `"hash":"one"`)
		assert.Contains(t, lines[2], `"hash":"two"`)
	})

	t.Run("reopened torn log keeps later saves", func(t *testing.T) {
		path := tempLogPath(t)
		err := os.WriteFile(path, []byte(`{"source":"https://example.com","hash":"abc123"}`+"\n"+`{"sour`), 0o644)
		require.NoError(t, err)

		s, err := store.OpenFileStore(path)
		require.NoError(t, err)
		_, err = s.Save(context.Background(), &shortener.ShortURL{Source: "https://next.com", Hash: "next"})
		require.NoError(t, err)
		require.NoError(t, s.Shutdown())

		reopened, err := store.OpenFileStore(path)
		require.NoError(t, err)
		defer func() { _ = reopened.Shutdown() }()

		for _, hash := range []shortener.Hash{"abc123", "next"} {
			_, found, err := reopened.Find(context.Background(), hash)

			require.NoError(t, err)
			assert.True(t, found, hash)
		}
	})

	t.Run("returns first unexpired match", func(t *testing.T) {
		clock := newTestClock()
		path := tempLogPath(t)
		expired := clock.Now().Add(-time.Hour).Format(time.RFC3339)
		writeLines(t, path,
			`{"source":"https://old.com","hash":"abc123","ttl":1,"created_at":"`+expired+`"}`,
			`{"source":"https://new.com","hash":"abc123"}`,
			`{"source":"https://newer.com","hash":"abc123"}`,
		)

		s, err := store.OpenFileStore(path, store.WithFileClock(clock.Now))
		require.NoError(t, err)
		defer func() { _ = s.Shutdown() }()

		got, found, err := s.Find(context.Background(), "abc123")

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "https://new.com", got.Source)
	})

	t.Run("reads lines longer than the default scanner buffer", func(t *testing.T) {
		path := tempLogPath(t)
		long := "https://example.com/" + strings.Repeat("a", 128*1024)
		raw, err := json.Marshal(&shortener.ShortURL{Source: long, Hash: "long"})
		require.NoError(t, err)
		writeLines(t, path, string(raw))

		s, err := store.OpenFileStore(path)
		require.NoError(t, err)
		defer func() { _ = s.Shutdown() }()

		got, found, err := s.Find(context.Background(), "long")

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, long, got.Source)
	})

	t.Run("returns undefined error when file is unreadable", func(t *testing.T) {
		s, err := store.OpenFileStore(tempLogPath(t))
		require.NoError(t, err)
		require.NoError(t, s.Shutdown())

		_, found, err := s.Find(context.Background(), "abc123")

		assert.False(t, found)
		assert.Equal(t, shortener.KindUndefined, shortener.KindOf(err))
	})
}

func TestFileStore_Ping(t *testing.T) {
	s, err := store.OpenFileStore(tempLogPath(t))
	require.NoError(t, err)

	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Shutdown())
	assert.Error(t, s.Ping(context.Background()))
}
