// Package bootstrap builds the enrollment adapters shared by the API, the worker and the maintenance commands.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/email"
	enrollmentmemory "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/memory"
	enrollmentpg "github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/persistence/postgres"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

// IdempotencyStore is the key store plus its retention hook.
type IdempotencyStore interface {
	ports.IdempotencyStore
	ports.IdempotencyPurger
}

// Stores groups the persistence adapters of one process.
type Stores struct {
	Events      ports.EventStore
	ReadModels  readmodel.Store
	Trainings   ports.TrainingRepository
	Campaigns   ports.CampaignRepository
	Idempotency IdempotencyStore
	// Durable is false when everything lives in process memory.
	Durable bool

	putCampaign func(context.Context, domain.Campaign) error
}

// NewStores returns postgres adapters for db, or in-memory ones when db is nil.
func NewStores(db *gorm.DB) Stores {
	if db == nil {
		catalog := enrollmentmemory.NewCatalog()
		return Stores{
			Events:      enrollmentmemory.NewEventStore(),
			ReadModels:  enrollmentmemory.NewReadModelStore(),
			Trainings:   catalog.Trainings(),
			Campaigns:   catalog.Campaigns(),
			Idempotency: enrollmentmemory.NewIdempotencyStore(),
			putCampaign: func(_ context.Context, c domain.Campaign) error {
				catalog.PutCampaign(c)
				return nil
			},
		}
	}
	campaigns := enrollmentpg.NewCampaignRepository(db)
	return Stores{
		Events:      enrollmentpg.NewEventStore(db),
		ReadModels:  enrollmentpg.NewReadModelStore(db),
		Trainings:   enrollmentpg.NewTrainingRepository(db),
		Campaigns:   campaigns,
		Idempotency: enrollmentpg.NewIdempotencyStore(db),
		Durable:     true,
		putCampaign: campaigns.Put,
	}
}

// SeedCatalog upserts the campaigns listed in a JSON file. An empty path is a no-op.
func (s Stores) SeedCatalog(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read catalog seed: %w", err)
	}
	var campaigns []domain.Campaign
	if err := json.Unmarshal(raw, &campaigns); err != nil {
		return 0, fmt.Errorf("decode catalog seed %s: %w", path, err)
	}
	for _, campaign := range campaigns {
		for i := range campaign.Trainings {
			campaign.Trainings[i].CampaignID = campaign.ID
		}
		if err := s.putCampaign(ctx, campaign); err != nil {
			return 0, fmt.Errorf("seed campaign %d: %w", campaign.ID, err)
		}
	}
	return len(campaigns), nil
}

// NewMailer returns an SMTP sender when a relay is configured, otherwise a sender that only logs.
func NewMailer(cfg email.SMTPConfig, logger *slog.Logger) (ports.EmailService, error) {
	if cfg.Addr == "" {
		if logger != nil {
			logger.Warn("SMTP_ADDR not set, candidate mail is logged instead of delivered")
		}
		return email.NewLogSender(logger), nil
	}
	sender, err := email.NewSMTPSender(cfg)
	if err != nil {
		return nil, err
	}
	return sender, nil
}
