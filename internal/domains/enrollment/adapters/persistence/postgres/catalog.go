package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

var (
	_ ports.TrainingRepository = (*TrainingRepository)(nil)
	_ ports.CampaignRepository = (*CampaignRepository)(nil)
)

type campaignRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:255"`
	StartAt   time.Time `gorm:"column:start_at;not null"`
	EndAt     time.Time `gorm:"column:end_at;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (campaignRecord) TableName() string { return "campaigns" }

type trainingRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	CampaignID    int64     `gorm:"column:campaign_id;not null;index"`
	City          string    `gorm:"column:city;size:255"`
	Address       string    `gorm:"column:address;size:512"`
	StartAt       time.Time `gorm:"column:start_at;not null"`
	EndAt         time.Time `gorm:"column:end_at;not null"`
	CoordinatorID int64     `gorm:"column:coordinator_id"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (trainingRecord) TableName() string { return "trainings" }

// TrainingRepository reads trainings from PostgreSQL.
type TrainingRepository struct {
	db *gorm.DB
}

// NewTrainingRepository wires the training catalog. Caller manages DB lifecycle and migrations.
func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

func (r *TrainingRepository) GetByIDs(ctx context.Context, ids []domain.TrainingID) ([]domain.Training, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres training repository not configured")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	var records []trainingRecord
	if err := r.db.WithContext(ctx).
		Where("id = ANY(?)", pq.Array(raw)).
		Order("start_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	trainings := make([]domain.Training, 0, len(records))
	for _, rec := range records {
		trainings = append(trainings, rec.toDomain())
	}
	return trainings, nil
}

func (r *TrainingRepository) GetByID(ctx context.Context, id domain.TrainingID) (*domain.Training, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres training repository not configured")
	}
	var record trainingRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	training := record.toDomain()
	return &training, nil
}

// CampaignRepository reads campaigns and their trainings from PostgreSQL.
type CampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository wires the campaign catalog. Caller manages DB lifecycle and migrations.
func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) GetAll(ctx context.Context) ([]domain.Campaign, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []campaignRecord
	if err := r.db.WithContext(ctx).Order("start_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	var trainings []trainingRecord
	if err := r.db.WithContext(ctx).Order("start_at ASC").Find(&trainings).Error; err != nil {
		return nil, err
	}
	byCampaign := map[int64][]domain.Training{}
	for _, t := range trainings {
		byCampaign[t.CampaignID] = append(byCampaign[t.CampaignID], t.toDomain())
	}
	campaigns := make([]domain.Campaign, 0, len(records))
	for _, rec := range records {
		campaigns = append(campaigns, rec.toDomain(byCampaign[rec.ID]))
	}
	return campaigns, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record campaignRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var trainings []trainingRecord
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", record.ID).
		Order("start_at ASC").
		Find(&trainings).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Training, 0, len(trainings))
	for _, t := range trainings {
		list = append(list, t.toDomain())
	}
	campaign := record.toDomain(list)
	return &campaign, nil
}

// Put upserts a campaign together with its trainings. Used for seeding.
func (r *CampaignRepository) Put(ctx context.Context, campaign domain.Campaign) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := campaignRecord{
			ID:      int64(campaign.ID),
			Name:    campaign.Name,
			StartAt: campaign.StartAt,
			EndAt:   campaign.EndAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "start_at", "end_at", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return err
		}
		if len(campaign.Trainings) == 0 {
			return nil
		}
		trainings := make([]trainingRecord, 0, len(campaign.Trainings))
		for _, t := range campaign.Trainings {
			trainings = append(trainings, trainingRecord{
				ID:            int64(t.ID),
				CampaignID:    int64(campaign.ID),
				City:          t.City,
				Address:       t.Address,
				StartAt:       t.StartAt,
				EndAt:         t.EndAt,
				CoordinatorID: int64(t.CoordinatorID),
			})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"campaign_id", "city", "address", "start_at", "end_at", "coordinator_id", "updated_at"}),
		}).Create(&trainings).Error
	})
}

func (r *CampaignRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres campaign repository not configured")
	}
	return nil
}

func (r trainingRecord) toDomain() domain.Training {
	return domain.Training{
		ID:            domain.TrainingID(r.ID),
		City:          r.City,
		Address:       r.Address,
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		CoordinatorID: domain.UserID(r.CoordinatorID),
		CampaignID:    domain.CampaignID(r.CampaignID),
	}
}

func (r campaignRecord) toDomain(trainings []domain.Training) domain.Campaign {
	return domain.Campaign{
		ID:        domain.CampaignID(r.ID),
		Name:      r.Name,
		StartAt:   r.StartAt,
		EndAt:     r.EndAt,
		Trainings: trainings,
	}
}
