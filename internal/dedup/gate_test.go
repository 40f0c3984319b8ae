package dedup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

type storeMock struct {
	mock.Mock
}

func (m *storeMock) Exists(ctx context.Context, digest [32]byte, kind domain.ArtifactKind) (bool, error) {
	args := m.Called(ctx, digest, kind)
	return args.Bool(0), args.Error(1)
}

func (m *storeMock) Insert(ctx context.Context, hash domain.DocumentHash) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckDuplicateHit(t *testing.T) {
	store := new(storeMock)
	store.On("Exists", mock.Anything, Digest([]byte("photo")), domain.ArtifactPhoto).
		Return(true, nil)

	gate := NewGate(store, testLogger())
	res := domain.NewAnalysisResult()
	gate.Check(context.Background(), res, []byte("photo"), domain.ArtifactPhoto)

	assert.False(t, res.OK)
	assert.True(t, res.HasCode(domain.CodeDuplicateUpload))
	store.AssertExpectations(t)
}

func TestCheckMiss(t *testing.T) {
	store := new(storeMock)
	store.On("Exists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	gate := NewGate(store, testLogger())
	res := domain.NewAnalysisResult()
	gate.Check(context.Background(), res, []byte("photo"), domain.ArtifactPhoto)

	assert.True(t, res.OK)
}

func TestCheckStoreErrorIsBestEffort(t *testing.T) {
	store := new(storeMock)
	store.On("Exists", mock.Anything, mock.Anything, mock.Anything).
		Return(false, errors.New("connection refused"))

	gate := NewGate(store, testLogger())
	res := domain.NewAnalysisResult()
	gate.Check(context.Background(), res, []byte("photo"), domain.ArtifactPhoto)

	assert.True(t, res.OK)
	assert.Empty(t, res.Codes)
}

func TestCheckNilStore(t *testing.T) {
	gate := NewGate(nil, testLogger())
	res := domain.NewAnalysisResult()

	assert.NotPanics(t, func() {
		gate.Check(context.Background(), res, []byte("photo"), domain.ArtifactPhoto)
		gate.Record(context.Background(), []byte("photo"), domain.ArtifactPhoto, nil)
	})
	assert.True(t, res.OK)
}

func TestRecordSwallowsInsertError(t *testing.T) {
	store := new(storeMock)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(h domain.DocumentHash) bool {
		return h.Kind == domain.ArtifactSignature && h.Digest == Digest([]byte("sig"))
	})).Return(errors.New("unique violation"))

	gate := NewGate(store, testLogger())

	assert.NotPanics(t, func() {
		gate.Record(context.Background(), []byte("sig"), domain.ArtifactSignature, nil)
	})
	store.AssertExpectations(t)
}
