package services

import (
	"context"
	"testing"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobService() (*JobService, *fakeJobsRepo) {
	repo := &fakeJobsRepo{}
	rm := &fakeRepoManager{clipsRepo: newFakeClipsRepo(), billingRepo: newFakeBillingLinksRepo(), jobsRepo: repo}
	return NewJobService(nil, rm), repo
}

func TestCreateJobQueued(t *testing.T) {
	svc, repo := newJobService()

	job, err := svc.CreateJob(context.Background(), "u1", "users/u1/sketch1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "u1", job.OwnerUID)
	assert.Equal(t, "users/u1/sketch1", job.ObjectID)
	assert.Equal(t, models.ClipKindVideo, job.Kind)
	assert.Equal(t, models.JobStatusQueued, job.Status)
	require.Len(t, repo.created, 1)

	// Each request gets its own job.
	again, err := svc.CreateJob(context.Background(), "u1", "users/u1/sketch1", "")
	require.NoError(t, err)
	assert.NotEqual(t, job.ID, again.ID)
}

func TestCreateJobValidation(t *testing.T) {
	svc, repo := newJobService()

	_, err := svc.CreateJob(context.Background(), "u1", "", "")
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = svc.CreateJob(context.Background(), "u1", "users/u1/x", "gif")
	assert.ErrorIs(t, err, common.ErrInvalidRequest)

	_, err = svc.CreateJob(context.Background(), "u1", "users/u2/x", "")
	assert.ErrorIs(t, err, common.ErrForbidden)

	assert.Empty(t, repo.created)
}
