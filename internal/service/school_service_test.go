package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/repository"
	"github.com/stemsi/school-directory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepo wraps a real store and fails the chosen operations.
type failingRepo struct {
	repository.SchoolRepository
	createErr error
}

func (r *failingRepo) Create(ctx context.Context, s *model.School) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.SchoolRepository.Create(ctx, s)
}

type schoolServiceFixture struct {
	svc   *SchoolService
	repo  repository.SchoolRepository
	media *MediaService
}

func newSchoolServiceFixture(t *testing.T, wrap func(repository.SchoolRepository) repository.SchoolRepository, idem IdempotencyStore) *schoolServiceFixture {
	t.Helper()
	cfg := testutil.GetTestConfig(t)
	var repo repository.SchoolRepository = testutil.NewSQLiteRepository(t, cfg)
	if wrap != nil {
		repo = wrap(repo)
	}
	media := NewMediaService(cfg)
	// Distinct timestamps so repeated "logo.png" uploads never collide.
	var tick int64
	media.now = func() time.Time {
		tick++
		return time.UnixMilli(tick)
	}
	return &schoolServiceFixture{
		svc:   NewSchoolService(repo, media, idem, zerolog.Nop()),
		repo:  repo,
		media: media,
	}
}

func oakHillRequest(t *testing.T) *model.CreateSchoolRequest {
	f := testutil.OakHill()
	return &model.CreateSchoolRequest{
		Name:    f.Name,
		Address: f.Address,
		City:    f.City,
		State:   f.State,
		Contact: f.Contact,
		EmailID: f.EmailID,
		Image:   testutil.FileHeader(t, "logo.png", testutil.PNG),
	}
}

func mediaFiles(t *testing.T, m *MediaService) []string {
	t.Helper()
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCreateStoresImageAndRow(t *testing.T) {
	fx := newSchoolServiceFixture(t, nil, nil)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, oakHillRequest(t), "")
	require.NoError(t, err)
	assert.Positive(t, res.ID)
	assert.False(t, res.Replayed)

	schools, err := fx.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, schools, 1)

	got := schools[0]
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, testutil.OakHill(), model.SchoolFields{
		Name: got.Name, Address: got.Address, City: got.City,
		State: got.State, Contact: got.Contact, EmailID: got.EmailID,
	})
	assert.True(t, strings.HasPrefix(got.Image, "/schoolImages/"))
	assert.True(t, strings.HasSuffix(got.Image, "logo.png"))
	assert.Len(t, mediaFiles(t, fx.media), 1)
}

func TestCreateKeepsImageWhenInsertFails(t *testing.T) {
	insertErr := errors.New("connection refused")
	fx := newSchoolServiceFixture(t, func(r repository.SchoolRepository) repository.SchoolRepository {
		return &failingRepo{SchoolRepository: r, createErr: insertErr}
	}, nil)

	_, err := fx.svc.Create(context.Background(), oakHillRequest(t), "")
	require.ErrorIs(t, err, insertErr)
	assert.Contains(t, err.Error(), "connection refused")

	// Known gap: no compensating delete of the written file.
	assert.Len(t, mediaFiles(t, fx.media), 1)
	schools, err := fx.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schools)
}

func TestCreateTooLargeWritesNothing(t *testing.T) {
	fx := newSchoolServiceFixture(t, nil, nil)
	fx.media.maxBytes = 1

	_, err := fx.svc.Create(context.Background(), oakHillRequest(t), "")
	require.ErrorIs(t, err, ErrFileTooLarge)

	assert.Empty(t, mediaFiles(t, fx.media))
	schools, err := fx.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schools)
}

func TestCreateWithIdempotencyKeyReplaysFirstResult(t *testing.T) {
	fx := newSchoolServiceFixture(t, nil, NewMemoryIdempotencyStore(time.Minute))
	ctx := context.Background()

	first, err := fx.svc.Create(ctx, oakHillRequest(t), "submit-1")
	require.NoError(t, err)
	second, err := fx.svc.Create(ctx, oakHillRequest(t), "submit-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Replayed)

	schools, err := fx.repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, schools, 1)

	// A different key is a different submission.
	third, err := fx.svc.Create(ctx, oakHillRequest(t), "submit-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestCreateWithoutKeyAcceptsDuplicates(t *testing.T) {
	fx := newSchoolServiceFixture(t, nil, NewMemoryIdempotencyStore(time.Minute))
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, oakHillRequest(t), "")
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, oakHillRequest(t), "")
	require.NoError(t, err)

	schools, err := fx.repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, schools, 2)
}

func TestCreateReleasesKeyOnFailure(t *testing.T) {
	idem := NewMemoryIdempotencyStore(time.Minute)
	fx := newSchoolServiceFixture(t, func(r repository.SchoolRepository) repository.SchoolRepository {
		return &failingRepo{SchoolRepository: r, createErr: errors.New("db down")}
	}, idem)

	_, err := fx.svc.Create(context.Background(), oakHillRequest(t), "k")
	require.Error(t, err)

	id, err := idem.Reserve(context.Background(), "k")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestCreateInFlightKeyIsRejected(t *testing.T) {
	idem := NewMemoryIdempotencyStore(time.Minute)
	fx := newSchoolServiceFixture(t, nil, idem)

	_, err := idem.Reserve(context.Background(), "busy")
	require.NoError(t, err)

	_, err = fx.svc.Create(context.Background(), oakHillRequest(t), "busy")
	assert.ErrorIs(t, err, ErrRequestInFlight)
}

func TestCreateFromReaderValidatesFields(t *testing.T) {
	fx := newSchoolServiceFixture(t, nil, nil)

	fields := testutil.OakHill()
	fields.City = ""
	_, err := fx.svc.CreateFromReader(context.Background(), fields, "logo.png", bytes.NewReader(testutil.PNG))
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Contains(t, err.Error(), "city")
	assert.Empty(t, mediaFiles(t, fx.media))

	school, err := fx.svc.CreateFromReader(context.Background(), testutil.OakHill(), "logo.png", bytes.NewReader(testutil.PNG))
	require.NoError(t, err)
	assert.Positive(t, school.ID)
}

func TestDeleteRemovesOnlyTheRow(t *testing.T) {
	fx := newSchoolServiceFixture(t, nil, nil)
	ctx := context.Background()

	a, err := fx.svc.Create(ctx, oakHillRequest(t), "")
	require.NoError(t, err)
	b, err := fx.svc.Create(ctx, oakHillRequest(t), "")
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, fx.svc.Delete(ctx, a.ID), ErrSchoolNotFound)

	schools, err := fx.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, b.ID, schools[0].ID)

	// Images are not cleaned up on delete.
	assert.Len(t, mediaFiles(t, fx.media), 2)
}

func TestHealth(t *testing.T) {
	fx := newSchoolServiceFixture(t, nil, nil)

	ok, err := fx.svc.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fx.repo.Close())
	ok, err = fx.svc.Health(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

// cancelingRepo cancels the request context during its next Create, as a
// client disconnect would. With failInsert the insert then fails with the
// context error; otherwise the row is written before the cancel.
type cancelingRepo struct {
	repository.SchoolRepository
	cancel     context.CancelFunc
	failInsert bool
}

func (r *cancelingRepo) Create(ctx context.Context, s *model.School) error {
	if r.cancel == nil {
		return r.SchoolRepository.Create(ctx, s)
	}
	cancel := r.cancel
	r.cancel = nil

	if r.failInsert {
		cancel()
		return ctx.Err()
	}
	err := r.SchoolRepository.Create(ctx, s)
	cancel()
	return err
}

func TestCreateReleasesKeyWhenClientDisconnects(t *testing.T) {
	idem, mr, _ := newRedisIdempotencyStore(t, 10*time.Minute)
	repo := &cancelingRepo{failInsert: true}
	fx := newSchoolServiceFixture(t, func(r repository.SchoolRepository) repository.SchoolRepository {
		repo.SchoolRepository = r
		return repo
	}, idem)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo.cancel = cancel

	_, err := fx.svc.Create(ctx, oakHillRequest(t), "retry-me")
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, mr.Exists(config.CacheKey.CreateSchoolIdempotencyKey("retry-me")))

	res, err := fx.svc.Create(context.Background(), oakHillRequest(t), "retry-me")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Positive(t, res.ID)
}

func TestCreateRecordsKeyWhenClientDisconnectsAfterInsert(t *testing.T) {
	idem, mr, _ := newRedisIdempotencyStore(t, 10*time.Minute)
	repo := &cancelingRepo{}
	fx := newSchoolServiceFixture(t, func(r repository.SchoolRepository) repository.SchoolRepository {
		repo.SchoolRepository = r
		return repo
	}, idem)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo.cancel = cancel

	first, err := fx.svc.Create(ctx, oakHillRequest(t), "retry-me")
	require.NoError(t, err)

	stored, err := mr.Get(config.CacheKey.CreateSchoolIdempotencyKey("retry-me"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(first.ID), stored)

	replay, err := fx.svc.Create(context.Background(), oakHillRequest(t), "retry-me")
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.ID, replay.ID)

	schools, err := fx.repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, schools, 1)
}
