package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/grading"
	"github.com/stemsi/jadwal-backend/internal/model"
)

// GradingStore is the persistence the grading service needs.
// Implemented by repository.GradingRepository.
type GradingStore interface {
	List(ctx context.Context) ([]model.GradingSystem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.GradingSystem, error)
	Create(ctx context.Context, g *model.GradingSystem) error
	Replace(ctx context.Context, g *model.GradingSystem, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GradingService manages grading systems. Every write validates the full
// band set first and then replaces it atomically.
type GradingService struct {
	store     GradingStore
	publisher ChangePublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewGradingService creates a new GradingService.
func NewGradingService(store GradingStore, publisher ChangePublisher, log zerolog.Logger) *GradingService {
	return &GradingService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

// List returns every grading system with its bands.
func (s *GradingService) List(ctx context.Context) ([]model.GradingSystem, error) {
	return s.store.List(ctx)
}

// GetByID returns one grading system.
func (s *GradingService) GetByID(ctx context.Context, id uuid.UUID) (*model.GradingSystem, error) {
	g, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return g, nil
}

// Validate checks a band set without saving it. It returns the uncovered
// ranges on success. A *grading.BandError is returned for overlaps and an
// error wrapping grading.ErrInvalidBand for malformed bands. Bounds are
// checked after rounding to the stored precision.
func (s *GradingService) Validate(bands []model.GradeBand) ([]grading.Range, error) {
	bands = normaliseBands(bands)
	if err := grading.CheckBands(bands); err != nil {
		return nil, err
	}
	if be := grading.ValidateBands(bands); be != nil {
		return nil, be
	}
	return grading.Gaps(bands), nil
}

// Create validates and stores a new grading system.
func (s *GradingService) Create(ctx context.Context, actorID int, req model.CreateGradingSystemRequest) (*model.GradingSystem, []grading.Range, error) {
	bands := normaliseBands(model.BandsFromInput(req.Bands))
	gaps, err := s.Validate(bands)
	if err != nil {
		return nil, nil, err
	}

	g := &model.GradingSystem{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsDefault:   req.IsDefault,
		Bands:       bands,
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, nil, storeErr(err)
	}

	s.log.Info().Str("grading_system_id", g.ID.String()).Int("bands", len(g.Bands)).Msg("Grading system created")
	s.publish(ctx, actorID, g, model.ChangeCreated)
	return g, gaps, nil
}

// Update replaces the name, flags and every band of a grading system.
func (s *GradingService) Update(ctx context.Context, actorID int, id uuid.UUID, req model.UpdateGradingSystemRequest) (*model.GradingSystem, []grading.Range, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if current.Version != req.Version {
		return nil, nil, ErrStaleVersion
	}

	bands := normaliseBands(model.BandsFromInput(req.Bands))
	gaps, err := s.Validate(bands)
	if err != nil {
		return nil, nil, err
	}

	g := &model.GradingSystem{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsDefault:   req.IsDefault,
		Bands:       bands,
	}
	if err := s.store.Replace(ctx, g, req.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrStaleVersion
		}
		return nil, nil, storeErr(err)
	}

	s.log.Info().Str("grading_system_id", id.String()).Int("version", g.Version).Msg("Grading system replaced")
	s.publish(ctx, actorID, g, model.ChangeUpdated)
	return g, gaps, nil
}

// Delete removes a grading system and its bands.
func (s *GradingService) Delete(ctx context.Context, actorID int, id uuid.UUID) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return deleteErr(err)
	}
	s.publish(ctx, actorID, current, model.ChangeDeleted)
	return nil
}

// Classify maps each percentage onto the bands of a grading system.
// Percentages no band covers come back with a nil label.
func (s *GradingService) Classify(ctx context.Context, id uuid.UUID, percentages []float64) ([]model.Classification, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]model.Classification, len(percentages))
	for i, p := range percentages {
		out[i] = model.Classification{Percentage: p}
		b, err := grading.Classify(g.Bands, p)
		if errors.Is(err, grading.ErrNoBand) {
			continue
		}
		if err != nil {
			return nil, err
		}
		label, points := b.Label, b.GradePoints
		out[i].Label = &label
		out[i].GradePoints = &points
		out[i].Remarks = b.Remarks
	}
	return out, nil
}

func normaliseBands(bands []model.GradeBand) []model.GradeBand {
	for i := range bands {
		bands[i].Label = strings.TrimSpace(bands[i].Label)
		bands[i].Remarks = strings.TrimSpace(bands[i].Remarks)
		bands[i].MinPercentage = grading.Round(bands[i].MinPercentage)
		bands[i].MaxPercentage = grading.Round(bands[i].MaxPercentage)
		bands[i].GradePoints = grading.Round(bands[i].GradePoints)
	}
	return bands
}

func (s *GradingService) publish(ctx context.Context, actorID int, g *model.GradingSystem, action model.ChangeAction) {
	if s.publisher == nil {
		return
	}
	snapshot, _ := json.Marshal(g)
	ev := model.ChangeEvent{
		Entity:   model.EntityGradingSystem,
		EntityID: g.ID.String(),
		Action:   action,
		ActorID:  actorID,
		Version:  g.Version,
		Snapshot: snapshot,
		At:       s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("grading_system_id", ev.EntityID).Msg("Change event publish failed")
	}
}
