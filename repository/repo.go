package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crazzzytube/constant"
	"crazzzytube/entities"
)

// JobRepository is the publish ledger: one row per publish operation,
// following the pipeline state machine.
type JobRepository interface {
	AutoMigrate(ctx context.Context) error
	CreateJob(ctx context.Context, job *entities.PublishJob) error
	FindJobById(ctx context.Context, id uuid.UUID) (*entities.PublishJob, error)
	ListJobsByOwner(ctx context.Context, ownerId string, limit int) ([]*entities.PublishJob, error)
	UpdateStateJob(ctx context.Context, state constant.PublishState, id uuid.UUID) error
	CompleteJob(ctx context.Context, id uuid.UUID, videoId string) error
	AbortJob(ctx context.Context, id uuid.UUID, kind string, message string) error
}

type repo struct {
	db *gorm.DB
}

func (r *repo) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&entities.PublishJob{})
}

func (r *repo) CreateJob(ctx context.Context, job *entities.PublishJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *repo) FindJobById(ctx context.Context, id uuid.UUID) (*entities.PublishJob, error) {
	job := &entities.PublishJob{}
	err := r.db.WithContext(ctx).First(job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return job, nil
}

func (r *repo) ListJobsByOwner(ctx context.Context, ownerId string, limit int) ([]*entities.PublishJob, error) {
	var jobs []*entities.PublishJob
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerId).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repo) UpdateStateJob(ctx context.Context, state constant.PublishState, id uuid.UUID) error {
	return r.updates(ctx, id, map[string]interface{}{
		"state": state,
	})
}

func (r *repo) CompleteJob(ctx context.Context, id uuid.UUID, videoId string) error {
	return r.updates(ctx, id, map[string]interface{}{
		"state":    constant.PublishStateDone,
		"video_id": videoId,
	})
}

func (r *repo) AbortJob(ctx context.Context, id uuid.UUID, kind string, message string) error {
	return r.updates(ctx, id, map[string]interface{}{
		"state":           constant.PublishStateAborted,
		"failure_kind":    kind,
		"failure_message": message,
	})
}

func (r *repo) updates(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	values["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&entities.PublishJob{}).Where("id = ?", id).Updates(values).Error
}

func NewRepo(db *sql.DB) (JobRepository, error) {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	if err != nil {
		return nil, err
	}
	return &repo{
		db: gormDB,
	}, nil
}
