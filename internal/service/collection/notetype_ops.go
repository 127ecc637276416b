package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
)

// GetNotetype retrieves a notetype by id.
func (s *Service) GetNotetype(ctx context.Context, id uuid.UUID) (*domain.Notetype, error) {
	return s.notetypes.GetByID(ctx, id)
}

// GetNotetypeByName retrieves a notetype by name, case-insensitively.
func (s *Service) GetNotetypeByName(ctx context.Context, name string) (*domain.Notetype, error) {
	return s.notetypes.GetByName(ctx, name)
}

// ListNotetypes returns every notetype keyed by id.
func (s *Service) ListNotetypes(ctx context.Context) (map[uuid.UUID]*domain.Notetype, error) {
	return s.notetypes.ListAll(ctx)
}

// CreateNotetype creates a notetype from field and template names.
func (s *Service) CreateNotetype(
	ctx context.Context,
	name string,
	fieldNames, templateNames []string,
	now time.Time,
) (*domain.Notetype, error) {
	nt, err := domain.NewNotetype(name, fieldNames, templateNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	nt.CreatedAt = now.UTC()
	nt.UpdatedAt = now.UTC()

	err = s.inTx(ctx, func(ctx context.Context, st txStores) error {
		return st.notetypes.Create(ctx, nt)
	})
	if err != nil {
		return nil, err
	}
	return nt, nil
}
