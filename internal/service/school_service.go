package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/repository"
)

// Sentinel errors for school operations.
var (
	ErrSchoolNotFound = errors.New("school not found")
	ErrMissingFields  = errors.New("missing required field")
)

const idempotencySettleTimeout = 5 * time.Second

// CreateResult reports the school id produced by Create.
type CreateResult struct {
	ID int64
	// Replayed is true when the id came from an earlier request with the
	// same idempotency key and nothing was written.
	Replayed bool
}

// SchoolService handles school registration, listing and deletion.
type SchoolService struct {
	schoolRepo repository.SchoolRepository
	media      *MediaService
	idem       IdempotencyStore
	log        zerolog.Logger
}

// NewSchoolService creates a new SchoolService. idem may be nil, which
// disables idempotency keys.
func NewSchoolService(schoolRepo repository.SchoolRepository, media *MediaService, idem IdempotencyStore, log zerolog.Logger) *SchoolService {
	return &SchoolService{
		schoolRepo: schoolRepo,
		media:      media,
		idem:       idem,
		log:        log.With().Str("component", "school_service").Logger(),
	}
}

// Create stores the uploaded image and inserts the school. req must already
// be validated. With a non-empty idempotencyKey and an idempotency store, a
// repeated key returns the first id without writing anything.
func (s *SchoolService) Create(ctx context.Context, req *model.CreateSchoolRequest, idempotencyKey string) (*CreateResult, error) {
	guarded := idempotencyKey != "" && s.idem != nil

	if guarded {
		id, err := s.idem.Reserve(ctx, idempotencyKey)
		switch {
		case errors.Is(err, ErrRequestInFlight):
			return nil, err
		case err != nil:
			// Registration works without Redis, just without duplicate protection.
			s.log.Warn().Err(err).Msg("idempotency store unavailable, creating without key")
			guarded = false
		case id != 0:
			s.log.Info().Int64("id", id).Msg("replayed idempotent create")
			return &CreateResult{ID: id, Replayed: true}, nil
		}
	}

	school, err := s.createFromUpload(ctx, req)

	if guarded {
		s.settleIdempotencyKey(ctx, idempotencyKey, school, err)
	}

	if err != nil {
		return nil, err
	}
	return &CreateResult{ID: school.ID}, nil
}

// CreateFromReader registers a school whose image comes from r rather than a
// multipart upload. Used by the seeder.
func (s *SchoolService) CreateFromReader(ctx context.Context, fields model.SchoolFields, filename string, r io.Reader) (*model.School, error) {
	if missing := fields.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	path, err := s.media.Save(filename, r)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	return s.insert(ctx, fields, path)
}

// List retrieves all schools in store order.
func (s *SchoolService) List(ctx context.Context) ([]model.School, error) {
	schools, err := s.schoolRepo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list schools")
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// Delete removes a school row. The image file stays on disk.
func (s *SchoolService) Delete(ctx context.Context, id int64) error {
	if err := s.schoolRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSchoolNotFound
		}
		s.log.Error().Err(err).Int64("id", id).Msg("failed to delete school")
		return fmt.Errorf("delete school: %w", err)
	}
	return nil
}

// Health reports whether the store answers SELECT 1 + 1 correctly.
func (s *SchoolService) Health(ctx context.Context) (bool, error) {
	ok, err := s.schoolRepo.Ping(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("health check query failed")
		return false, err
	}
	return ok, nil
}

// settleIdempotencyKey releases the key after a failed create or records the
// id after a successful one. It outlives the request context: a client that
// disconnects mid-create must still be able to retry with the same key.
func (s *SchoolService) settleIdempotencyKey(ctx context.Context, key string, school *model.School, createErr error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencySettleTimeout)
	defer cancel()

	if createErr != nil {
		if err := s.idem.Release(ctx, key); err != nil {
			s.log.Warn().Err(err).Msg("failed to release idempotency key")
		}
		return
	}
	if err := s.idem.Complete(ctx, key, school.ID); err != nil {
		s.log.Warn().Err(err).Int64("id", school.ID).Msg("failed to record idempotency key")
	}
}

func (s *SchoolService) createFromUpload(ctx context.Context, req *model.CreateSchoolRequest) (*model.School, error) {
	path, err := s.media.SaveUpload(req.Image)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	return s.insert(ctx, req.Fields(), path)
}

func (s *SchoolService) insert(ctx context.Context, fields model.SchoolFields, imagePath string) (*model.School, error) {
	school := model.NewSchool(fields, imagePath)
	if err := s.schoolRepo.Create(ctx, school); err != nil {
		// Known gap: the image written for this request is not removed.
		s.log.Error().Err(err).Str("orphaned_image", imagePath).Msg("failed to insert school")
		return nil, fmt.Errorf("insert school: %w", err)
	}

	s.log.Info().Int64("id", school.ID).Str("image", imagePath).Msg("school added")
	return school, nil
}
