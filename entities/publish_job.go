package entities

import (
	"time"

	"github.com/google/uuid"

	"crazzzytube/constant"
)

// PublishJob is the ledger row of one publish operation.
type PublishJob struct {
	ID             uuid.UUID             `json:"id" gorm:"type:uuid;primary_key"`
	OwnerId        string                `json:"owner_id" gorm:"type:varchar(24);not null;index:idx_publish_jobs_owner_id"`
	Title          string                `json:"title" gorm:"type:varchar(255)"`
	State          constant.PublishState `json:"state" gorm:"type:varchar(20);not null;index:idx_publish_jobs_state"`
	FailureKind    *string               `json:"failure_kind" gorm:"type:varchar(20)"`
	FailureMessage *string               `json:"failure_message" gorm:"type:text"`
	VideoId        *string               `json:"video_id" gorm:"type:varchar(24)"`
	CreatedAt      time.Time             `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time             `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (PublishJob) TableName() string {
	return "publish_jobs"
}
