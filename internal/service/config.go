package service

import (
	"context"
	"strings"
	"time"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/auth"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// ConfigService manages the singleton organization record. Updates
// require ADMIN and stamp the acting user as the row's owner.
type ConfigService struct {
	core
}

// Get returns the current configuration.
func (s *ConfigService) Get(ctx context.Context) *async.Future[*domain.GlobalConfig] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.GlobalConfig, error) {
		return s.store.GetGlobalConfig(ctx)
	})
}

// Update upserts the single configuration row.
func (s *ConfigService) Update(ctx context.Context, orgName, orgTaxID, orgAddress, orgSlogan string) *async.Future[*domain.GlobalConfig] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.GlobalConfig, error) {
		if strings.TrimSpace(orgName) == "" {
			return nil, apperr.Validationf("org_name", "organization name must not be empty")
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		cfg := &domain.GlobalConfig{
			ID:         domain.GlobalConfigID,
			OrgName:    strings.TrimSpace(orgName),
			OrgTaxID:   strings.TrimSpace(orgTaxID),
			OrgAddress: strings.TrimSpace(orgAddress),
			OrgSlogan:  strings.TrimSpace(orgSlogan),
			UpdatedBy:  actor.ID,
			UpdatedAt:  time.Now().UTC(),
		}
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.UpsertGlobalConfig(ctx, cfg); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, "config.update", "GlobalConfig", "1",
				"org_name="+cfg.OrgName)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("global config updated", "actor", actor.Username)
		return cfg, nil
	})
}
