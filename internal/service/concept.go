package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/auth"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// ConceptService manages commission definitions. Mutations require ADMIN.
type ConceptService struct {
	core
}

func validateConcept(name string, typ domain.ConceptType, value decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validationf("name", "concept name must not be empty")
	}
	if !typ.Valid() {
		return apperr.Validationf("type", "concept type must be FIXED or RATE, got %q", string(typ))
	}
	return typ.ValidateValue(value)
}

// Create registers a new active concept.
func (s *ConceptService) Create(ctx context.Context, name string, typ domain.ConceptType, value decimal.Decimal) *async.Future[*domain.Concept] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Concept, error) {
		if err := validateConcept(name, typ, value); err != nil {
			return nil, err
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		c := &domain.Concept{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(name),
			Type:      typ,
			Value:     value,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.InsertConcept(ctx, c); err != nil {
				return err
			}
			details := fmt.Sprintf("name=%s type=%s value=%s", c.Name, c.Type, c.Value)
			return s.audit.Record(ctx, tx, "concept.create", "Concept", c.ID, details)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("concept created", "id", c.ID, "name", c.Name, "actor", actor.Username)
		return c, nil
	})
}

// Update rewrites a concept's definition. Existing transactions keep the
// commission snapshot taken at their creation time.
func (s *ConceptService) Update(ctx context.Context, id, name string, typ domain.ConceptType, value decimal.Decimal, active bool) *async.Future[*domain.Concept] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Concept, error) {
		if err := validateConcept(name, typ, value); err != nil {
			return nil, err
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		c, err := s.store.GetConcept(ctx, id)
		if err != nil {
			return nil, err
		}
		c.Name = strings.TrimSpace(name)
		c.Type = typ
		c.Value = value
		c.Active = active
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.UpdateConcept(ctx, c); err != nil {
				return err
			}
			details := fmt.Sprintf("name=%s type=%s value=%s", c.Name, c.Type, c.Value)
			return s.audit.Record(ctx, tx, "concept.update", "Concept", c.ID, details)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("concept updated", "id", c.ID, "actor", actor.Username)
		return c, nil
	})
}

// ListAll returns every concept, inactive ones included.
func (s *ConceptService) ListAll(ctx context.Context) *async.Future[[]domain.Concept] {
	return async.Run(s.pool, ctx, func(ctx context.Context) ([]domain.Concept, error) {
		return s.store.ListConcepts(ctx, false)
	})
}

// ListAllActive returns the concepts available for new transactions.
func (s *ConceptService) ListAllActive(ctx context.Context) *async.Future[[]domain.Concept] {
	return async.Run(s.pool, ctx, func(ctx context.Context) ([]domain.Concept, error) {
		return s.store.ListConcepts(ctx, true)
	})
}

// FindByID looks a concept up by id.
func (s *ConceptService) FindByID(ctx context.Context, id string) *async.Future[*domain.Concept] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Concept, error) {
		return s.store.GetConcept(ctx, id)
	})
}

// FindByName looks a concept up by its exact name.
func (s *ConceptService) FindByName(ctx context.Context, name string) *async.Future[*domain.Concept] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.Concept, error) {
		return s.store.GetConceptByName(ctx, strings.TrimSpace(name))
	})
}
