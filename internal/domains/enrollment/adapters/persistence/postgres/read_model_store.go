package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/readmodel"
)

var _ readmodel.Store = (*ReadModelStore)(nil)

const enrollmentProjection = "enrollments"

// ReadModelStore persists enrollment projection rows in PostgreSQL.
// Filterable attributes are copied into columns; the folded state is stored as JSON.
type ReadModelStore struct {
	db *gorm.DB
}

// NewReadModelStore wires a PostgreSQL-backed projection store. Caller manages DB lifecycle and migrations.
func NewReadModelStore(db *gorm.DB) *ReadModelStore {
	return &ReadModelStore{db: db}
}

type enrollmentRow struct {
	EnrollmentID       uuid.UUID                   `gorm:"primaryKey;column:enrollment_id;type:uuid"`
	CampaignID         int64                       `gorm:"column:campaign_id;index"`
	Region             string                      `gorm:"column:region;size:255;index"`
	CityKeys           pq.StringArray              `gorm:"column:city_keys;type:text[]"`
	HasLecturerRights  bool                        `gorm:"column:has_lecturer_rights;index"`
	FullName           string                      `gorm:"column:full_name;size:255"`
	SubmittedAt        time.Time                   `gorm:"column:submitted_at;index"`
	LastSequence       int64                       `gorm:"column:last_sequence"`
	State              domain.State                `gorm:"column:state;type:jsonb;serializer:json"`
	Campaign           *readmodel.CampaignSummary  `gorm:"column:campaign;type:jsonb;serializer:json"`
	PreferredTrainings []readmodel.TrainingSummary `gorm:"column:preferred_trainings;type:jsonb;serializer:json"`
	UpdatedAt          time.Time                   `gorm:"column:updated_at"`
}

func (enrollmentRow) TableName() string { return "enrollment_read_models" }

type checkpointRecord struct {
	Name      string `gorm:"primaryKey;column:name;size:128"`
	Position  int64  `gorm:"column:position"`
	UpdatedAt time.Time
}

func (checkpointRecord) TableName() string { return "projection_checkpoints" }

func (s *ReadModelStore) Get(ctx context.Context, id domain.EnrollmentID) (*readmodel.EnrollmentReadModel, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var row enrollmentRow
	if err := s.db.WithContext(ctx).First(&row, "enrollment_id = ?", id.UUID()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	model := row.toModel()
	return &model, nil
}

func (s *ReadModelStore) Save(ctx context.Context, model readmodel.EnrollmentReadModel) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	row := toRow(model)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (s *ReadModelStore) List(ctx context.Context, query readmodel.StoreQuery) ([]readmodel.EnrollmentReadModel, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Model(&enrollmentRow{})
	if query.CampaignID != nil {
		tx = tx.Where("campaign_id = ?", int64(*query.CampaignID))
	}
	if region := strings.TrimSpace(query.Region); region != "" {
		tx = tx.Where("LOWER(region) = LOWER(?)", region)
	}
	if city := strings.TrimSpace(query.City); city != "" {
		tx = tx.Where("? = ANY(city_keys)", strings.ToLower(city))
	}
	if query.HasLecturerRights != nil {
		tx = tx.Where("has_lecturer_rights = ?", *query.HasLecturerRights)
	}
	var rows []enrollmentRow
	if err := tx.Order("submitted_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	models := make([]readmodel.EnrollmentReadModel, 0, len(rows))
	for i := range rows {
		models = append(models, rows[i].toModel())
	}
	return models, nil
}

func (s *ReadModelStore) Checkpoint(ctx context.Context) (uint64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	var record checkpointRecord
	if err := s.db.WithContext(ctx).First(&record, "name = ?", enrollmentProjection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return uint64(record.Position), nil
}

func (s *ReadModelStore) SaveCheckpoint(ctx context.Context, position uint64) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := checkpointRecord{Name: enrollmentProjection, Position: int64(position)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "updated_at"}),
	}).Create(&record).Error
}

func (s *ReadModelStore) Reset(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&enrollmentRow{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", enrollmentProjection).Delete(&checkpointRecord{}).Error
	})
}

func (s *ReadModelStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres read model store not configured")
	}
	return nil
}

func toRow(model readmodel.EnrollmentReadModel) enrollmentRow {
	cities := make(pq.StringArray, 0, len(model.State.PreferredLecturingCities))
	for _, city := range model.State.PreferredLecturingCities {
		cities = append(cities, strings.ToLower(strings.TrimSpace(city)))
	}
	return enrollmentRow{
		EnrollmentID:       model.ID.UUID(),
		CampaignID:         int64(model.State.CampaignID),
		Region:             model.State.Region,
		CityKeys:           cities,
		HasLecturerRights:  model.State.HasLecturerRights,
		FullName:           model.State.FullName,
		SubmittedAt:        model.State.SubmittedAt,
		LastSequence:       int64(model.LastSequence()),
		State:              model.State,
		Campaign:           model.Campaign,
		PreferredTrainings: model.PreferredTrainings,
		UpdatedAt:          model.UpdatedAt,
	}
}

func (r enrollmentRow) toModel() readmodel.EnrollmentReadModel {
	return readmodel.EnrollmentReadModel{
		ID:                 domain.EnrollmentIDFromUUID(r.EnrollmentID),
		State:              r.State,
		Campaign:           r.Campaign,
		PreferredTrainings: r.PreferredTrainings,
		UpdatedAt:          r.UpdatedAt,
	}
}

// Models lists the records this package persists, for schema migration.
func Models() []any {
	return []any{
		&eventRecord{},
		&enrollmentRow{},
		&checkpointRecord{},
		&campaignRecord{},
		&trainingRecord{},
		&idempotencyKey{},
	}
}
