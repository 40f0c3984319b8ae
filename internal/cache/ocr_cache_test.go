package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	entries map[string][]byte
	setErr  error
	sets    int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := s.entries[key]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	return nil
}

type countingEngine struct {
	text  string
	err   error
	calls int
}

func (e *countingEngine) Recognize(_ context.Context, _ []byte) (string, error) {
	e.calls++
	return e.text, e.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedOCREngine_MissThenHit(t *testing.T) {
	engine := &countingEngine{text: "PERMIS DE CONDUIRE"}
	store := newMemStore()
	cached := NewCachedOCREngine(engine, store, time.Hour, testLogger())

	image := []byte("image bytes")

	text, err := cached.Recognize(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "PERMIS DE CONDUIRE", text)
	assert.Equal(t, 1, engine.calls)

	text, err = cached.Recognize(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "PERMIS DE CONDUIRE", text)
	assert.Equal(t, 1, engine.calls, "second call should hit the cache")
}

func TestCachedOCREngine_DistinctImagesDistinctKeys(t *testing.T) {
	engine := &countingEngine{text: "some text"}
	store := newMemStore()
	cached := NewCachedOCREngine(engine, store, time.Hour, testLogger())

	_, err := cached.Recognize(context.Background(), []byte("first"))
	require.NoError(t, err)
	_, err = cached.Recognize(context.Background(), []byte("second"))
	require.NoError(t, err)

	assert.Equal(t, 2, engine.calls)
	assert.Len(t, store.entries, 2)
}

func TestCachedOCREngine_EngineErrorNotCached(t *testing.T) {
	engine := &countingEngine{err: errors.New("worker crashed")}
	store := newMemStore()
	cached := NewCachedOCREngine(engine, store, time.Hour, testLogger())

	_, err := cached.Recognize(context.Background(), []byte("image"))
	assert.Error(t, err)
	assert.Equal(t, 0, store.sets)
}

func TestCachedOCREngine_StoreFailureDegrades(t *testing.T) {
	engine := &countingEngine{text: "text"}
	store := newMemStore()
	store.setErr = errors.New("database down")
	cached := NewCachedOCREngine(engine, store, time.Hour, testLogger())

	text, err := cached.Recognize(context.Background(), []byte("image"))
	require.NoError(t, err)
	assert.Equal(t, "text", text)
}
