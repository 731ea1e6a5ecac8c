package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// ErrSourceTaken is returned when a source name or url is already in use.
var ErrSourceTaken = fmt.Errorf("source with this name or URL already exists: %w", domain.ErrConflict)

// SourceService manages the configured feeds.
type SourceService struct {
	sources ports.SourceRepository
	logger  *slog.Logger
}

// NewSourceService builds the service.
func NewSourceService(sources ports.SourceRepository, logger *slog.Logger) *SourceService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SourceService{sources: sources, logger: logger}
}

// SourceInput is the payload accepted when creating a source.
type SourceInput struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Create validates and stores a new source.
func (s *SourceService) Create(ctx context.Context, in SourceInput) (domain.Source, error) {
	src, err := domain.NewSource(in.Name, in.URL, in.Type, in.IsActive)
	if err != nil {
		return domain.Source{}, err
	}
	created, err := s.sources.CreateSource(ctx, src)
	if err != nil {
		return domain.Source{}, conflictOr(err)
	}
	s.logger.Info("source created", "source_id", created.ID, "name", created.Name, "type", created.Type)
	return created, nil
}

// List returns every source, newest first.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.sources.ListSources(ctx, domain.SourceFilter{})
}

// Get returns one source.
func (s *SourceService) Get(ctx context.Context, id string) (domain.Source, error) {
	return s.sources.GetSource(ctx, id)
}

// Update applies patch to the source with id.
func (s *SourceService) Update(ctx context.Context, id string, patch domain.SourcePatch) (domain.Source, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return domain.Source{}, fmt.Errorf("%w: unknown source type %q", domain.ErrInvalid, *patch.Type)
	}
	src, err := s.sources.GetSource(ctx, id)
	if err != nil {
		return domain.Source{}, err
	}
	patch.Apply(&src)
	if src.Name == "" || src.URL == "" {
		return domain.Source{}, fmt.Errorf("%w: name and url must not be empty", domain.ErrInvalid)
	}
	updated, err := s.sources.UpdateSource(ctx, src)
	if err != nil {
		return domain.Source{}, conflictOr(err)
	}
	return updated, nil
}

// Delete removes the source. Its articles are kept.
func (s *SourceService) Delete(ctx context.Context, id string) error {
	if err := s.sources.DeleteSource(ctx, id); err != nil {
		return err
	}
	s.logger.Info("source deleted", "source_id", id)
	return nil
}

func conflictOr(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return ErrSourceTaken
	}
	return err
}
