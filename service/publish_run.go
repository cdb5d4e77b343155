package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crazzzytube/apperror"
	"crazzzytube/constant"
	"crazzzytube/entities"
	"crazzzytube/pkg/metrics"
	"crazzzytube/repository"
)

var nextState = map[constant.PublishState]constant.PublishState{
	constant.PublishStateValidating:  constant.PublishStateTranscoding,
	constant.PublishStateTranscoding: constant.PublishStateUploading,
	constant.PublishStateUploading:   constant.PublishStatePersisting,
	constant.PublishStatePersisting:  constant.PublishStateDone,
}

// publishRun tracks one publish operation through its state machine and
// mirrors every transition into the ledger. Ledger writes never fail the run.
type publishRun struct {
	ctx     context.Context
	jobs    repository.JobRepository
	jobID   uuid.UUID
	state   constant.PublishState
	entered time.Time
}

func startRun(ctx context.Context, jobs repository.JobRepository, ownerId, title string) *publishRun {
	run := &publishRun{
		ctx:     context.WithoutCancel(ctx),
		jobs:    jobs,
		jobID:   uuid.New(),
		state:   constant.PublishStateValidating,
		entered: time.Now(),
	}

	if run.jobs != nil {
		err := run.jobs.CreateJob(run.ctx, &entities.PublishJob{
			ID:      run.jobID,
			OwnerId: ownerId,
			Title:   truncate(title, 255),
			State:   run.state,
		})
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record publish job, continuing without ledger")
			run.jobs = nil
		}
	}
	return run
}

func (r *publishRun) State() constant.PublishState {
	return r.state
}

func (r *publishRun) advance(next constant.PublishState) {
	if nextState[r.state] != next || next == constant.PublishStateDone {
		zerolog.Ctx(r.ctx).Error().
			Str("from", string(r.state)).
			Str("to", string(next)).
			Msg("illegal publish state transition")
		return
	}
	r.enter(next)

	if r.jobs != nil {
		if err := r.jobs.UpdateStateJob(r.ctx, next, r.jobID); err != nil {
			zerolog.Ctx(r.ctx).Warn().Err(err).Str("job_id", r.jobID.String()).Msg("failed to update publish job")
		}
	}
}

func (r *publishRun) complete(videoId string) {
	if r.state != constant.PublishStatePersisting {
		zerolog.Ctx(r.ctx).Error().Str("from", string(r.state)).Msg("publish completed from unexpected state")
	}
	r.enter(constant.PublishStateDone)

	if r.jobs != nil {
		if err := r.jobs.CompleteJob(r.ctx, r.jobID, videoId); err != nil {
			zerolog.Ctx(r.ctx).Warn().Err(err).Str("job_id", r.jobID.String()).Msg("failed to complete publish job")
		}
	}
}

func (r *publishRun) abort(cause error) {
	if r.state.Terminal() {
		return
	}
	failedIn := r.state
	r.enter(constant.PublishStateAborted)

	zerolog.Ctx(r.ctx).Error().
		Err(cause).
		Str("job_id", r.jobID.String()).
		Str("failed_in", string(failedIn)).
		Str("kind", string(apperror.KindOf(cause))).
		Msg("publish aborted")

	if r.jobs != nil {
		err := r.jobs.AbortJob(r.ctx, r.jobID, string(apperror.KindOf(cause)), apperror.MessageOf(cause))
		if err != nil {
			zerolog.Ctx(r.ctx).Warn().Err(err).Str("job_id", r.jobID.String()).Msg("failed to abort publish job")
		}
	}
}

func (r *publishRun) enter(next constant.PublishState) {
	metrics.PublishStageDuration.
		WithLabelValues(strings.ToLower(string(r.state))).
		Observe(time.Since(r.entered).Seconds())
	r.state = next
	r.entered = time.Now()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
