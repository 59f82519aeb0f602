package worker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/clipforge/video-export-backend/internal/config"
	"github.com/clipforge/video-export-backend/internal/exports"
	"github.com/clipforge/video-export-backend/internal/models"
	"github.com/clipforge/video-export-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobStore struct {
	mu         sync.Mutex
	jobs       []*models.ExportJob
	lastLimit  int
	updateErr  error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{}
}

func (f *fakeJobStore) addJob(job *models.ExportJob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.CreatedAt = time.Now().UTC().Add(time.Duration(len(f.jobs)) * time.Second)
	f.jobs = append(f.jobs, job)
}

func (f *fakeJobStore) find(jobID string) *models.ExportJob {
	for _, job := range f.jobs {
		if job.JobID == jobID {
			return job
		}
	}
	return nil
}

func (f *fakeJobStore) CreateJob(ctx context.Context, job *models.ExportJob) (*models.ExportJob, error) {
	f.addJob(job)
	return job, nil
}

func (f *fakeJobStore) GetJobByID(ctx context.Context, jobID string) (*models.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.find(jobID)
	if job == nil {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) GetJobsByVideo(ctx context.Context, videoID, clientID string, limit int) ([]*models.ExportJob, error) {
	return nil, nil
}

func (f *fakeJobStore) FetchPendingJobs(ctx context.Context, limit int) ([]*models.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	var pending []*models.ExportJob
	for _, job := range f.jobs {
		if job.Status == models.JobStatusPending && len(pending) < limit {
			copied := *job
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (f *fakeJobStore) CountPendingJobs(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, job := range f.jobs {
		if job.Status == models.JobStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeJobStore) ClaimJob(ctx context.Context, jobID string) (*models.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.find(jobID)
	if job == nil || job.Status != models.JobStatusPending {
		return nil, sql.ErrNoRows
	}
	now := time.Now().UTC()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	copied := *job
	copied.Outputs = append(models.OutputList(nil), job.Outputs...)
	return &copied, nil
}

func (f *fakeJobStore) UpdateJobStatus(ctx context.Context, jobID string, update *models.JobStatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	job := f.find(jobID)
	if job == nil {
		return sql.ErrNoRows
	}
	job.Status = update.Status
	if update.Progress != nil {
		job.Progress = *update.Progress
	}
	if update.ErrorMessage != nil {
		job.ErrorMessage = *update.ErrorMessage
	}
	if update.Outputs != nil {
		job.Outputs = update.Outputs
	}
	if update.CompletedAt != nil {
		job.CompletedAt = update.CompletedAt
	}
	return nil
}

type fakeVideoStore struct {
	videos map[string]*models.VideoFile
}

func (f *fakeVideoStore) GetVideoByID(ctx context.Context, videoID string) (*models.VideoFile, error) {
	video, ok := f.videos[videoID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return video, nil
}

type fakeRedisStore struct{}

func (f *fakeRedisStore) CacheJob(ctx context.Context, job *models.ExportJob) error { return nil }
func (f *fakeRedisStore) GetJobByID(ctx context.Context, jobID string) (*models.ExportJob, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeRedisStore) DeleteJob(ctx context.Context, jobID string) error { return nil }

type fakeRenderer struct {
	mu     sync.Mutex
	calls  int
	render func(video *models.VideoFile, output models.ExportOutput) (*exports.RenderResult, error)
}

func (f *fakeRenderer) RenderOutput(ctx context.Context, video *models.VideoFile, state *models.EditState, output models.ExportOutput) (*exports.RenderResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.render != nil {
		return f.render(video, output)
	}
	return &exports.RenderResult{ArtifactURL: "s3://video-exports/" + output.Filename}, nil
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func workerTestConfig() *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{WorkerCount: 2},
		Export: config.ExportConfig{MaxBatchSize: 50, PageSize: 20},
	}
}

func workerTestLogger(cfg *config.Config) logger.Logger {
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	return appLogger
}

func testJob(id, videoID string, outputs int) *models.ExportJob {
	list := make(models.OutputList, 0, outputs)
	for i := 0; i < outputs; i++ {
		list = append(list, models.ExportOutput{
			AspectRatio: models.AspectRatio16x9,
			Resolution:  models.Resolution1080p,
			Format:      models.FormatMP4,
			Filename:    fmt.Sprintf("c1_%s_16:9_1080p_%d.mp4", videoID, i),
			Width:       1920,
			Height:      1080,
		})
	}
	return &models.ExportJob{
		JobID:     id,
		VideoID:   videoID,
		ClientID:  "c1",
		EditState: models.EditState{Version: models.EditStateVersion},
		Outputs:   list,
		Status:    models.JobStatusPending,
	}
}

func testVideos(ids ...string) map[string]*models.VideoFile {
	videos := make(map[string]*models.VideoFile, len(ids))
	for _, id := range ids {
		videos[id] = &models.VideoFile{
			VideoID:  id,
			ClientID: "c1",
			S3Key:    "uploads/c1/" + id + ".mp4",
			S3Bucket: "video-input",
			Duration: 30,
			Status:   models.VideoStatusCompleted,
		}
	}
	return videos
}

func newTestWorker(store *fakeJobStore, renderer *fakeRenderer, videos map[string]*models.VideoFile) (*Processor, *Runner) {
	cfg := workerTestConfig()
	log := workerTestLogger(cfg)
	processor := NewProcessor(store, &fakeVideoStore{videos: videos}, &fakeRedisStore{}, renderer, log)
	runner := NewRunner(cfg, store, processor, log)
	return processor, runner
}

func TestProcessor_CompletesJob(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 2))
	renderer := &fakeRenderer{}
	processor, _ := newTestWorker(store, renderer, testVideos("v1"))

	job, err := store.GetJobByID(context.Background(), "j1")
	require.NoError(t, err)
	result, err := processor.ProcessJob(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Outputs)
	assert.Equal(t, 2, renderer.callCount())

	stored, err := store.GetJobByID(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.CompletedAt)
	for _, output := range stored.Outputs {
		assert.NotEmpty(t, output.ArtifactURL)
	}
}

func TestProcessor_IdempotentOnTerminalJob(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 1))
	renderer := &fakeRenderer{}
	processor, _ := newTestWorker(store, renderer, testVideos("v1"))

	job, _ := store.GetJobByID(context.Background(), "j1")
	_, err := processor.ProcessJob(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, 1, renderer.callCount())

	completed, _ := store.GetJobByID(context.Background(), "j1")
	result, err := processor.ProcessJob(context.Background(), completed)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, renderer.callCount(), "terminal job must not be re-rendered")

	unchanged, _ := store.GetJobByID(context.Background(), "j1")
	assert.Equal(t, models.JobStatusCompleted, unchanged.Status)
	assert.Equal(t, 100, unchanged.Progress)
}

func TestProcessor_FailFastOnFirstOutputError(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 3))
	renderer := &fakeRenderer{
		render: func(video *models.VideoFile, output models.ExportOutput) (*exports.RenderResult, error) {
			return nil, fmt.Errorf("render quota exceeded")
		},
	}
	processor, _ := newTestWorker(store, renderer, testVideos("v1"))

	job, _ := store.GetJobByID(context.Background(), "j1")
	result, err := processor.ProcessJob(context.Background(), job)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "render quota exceeded")
	assert.Equal(t, 1, renderer.callCount(), "outputs after the failure must be skipped")

	stored, _ := store.GetJobByID(context.Background(), "j1")
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "render quota exceeded")
	require.NotNil(t, stored.CompletedAt)
}

func TestRunner_BatchIsolation(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 1))
	store.addJob(testJob("j2", "v2", 1))
	store.addJob(testJob("j3", "v3", 1))
	renderer := &fakeRenderer{
		render: func(video *models.VideoFile, output models.ExportOutput) (*exports.RenderResult, error) {
			if video.VideoID == "v2" {
				panic("renderer blew up")
			}
			return &exports.RenderResult{ArtifactURL: "s3://video-exports/" + output.Filename}, nil
		},
	}
	_, runner := newTestWorker(store, renderer, testVideos("v1", "v2", "v3"))

	result, err := runner.ProcessPending(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, result.Processed, result.Succeeded+result.Failed)

	j1, _ := store.GetJobByID(context.Background(), "j1")
	j3, _ := store.GetJobByID(context.Background(), "j3")
	assert.Equal(t, models.JobStatusCompleted, j1.Status)
	assert.Equal(t, models.JobStatusCompleted, j3.Status)
}

func TestRunner_ClampsLimit(t *testing.T) {
	store := newFakeJobStore()
	_, runner := newTestWorker(store, &fakeRenderer{}, testVideos())

	_, err := runner.ProcessPending(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, 50, store.lastLimit)
}

func TestRunner_FIFOOrder(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 1))
	store.addJob(testJob("j2", "v1", 1))
	store.addJob(testJob("j3", "v1", 1))
	_, runner := newTestWorker(store, &fakeRenderer{}, testVideos("v1"))

	result, err := runner.ProcessPending(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 2, result.Processed)
	assert.Equal(t, "j1", result.Results[0].JobID)
	assert.Equal(t, "j2", result.Results[1].JobID)

	j3, _ := store.GetJobByID(context.Background(), "j3")
	assert.Equal(t, models.JobStatusPending, j3.Status, "jobs beyond the limit stay pending")
}

func TestProcessor_PersistenceFailurePropagates(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 1))
	store.updateErr = fmt.Errorf("connection reset by peer")
	processor, _ := newTestWorker(store, &fakeRenderer{}, testVideos("v1"))

	job, _ := store.GetJobByID(context.Background(), "j1")
	result, err := processor.ProcessJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Nil(t, result)

	// The claim was written before the failing update, so the job keeps its
	// last-written status instead of a partial terminal write.
	stored, getErr := store.GetJobByID(context.Background(), "j1")
	require.NoError(t, getErr)
	assert.Equal(t, models.JobStatusProcessing, stored.Status)
	assert.Empty(t, stored.ErrorMessage)
	assert.Nil(t, stored.CompletedAt)
}

func TestRunner_PersistenceFailureCountsAsFailed(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 1))
	store.addJob(testJob("j2", "v2", 1))
	store.updateErr = fmt.Errorf("connection reset by peer")
	_, runner := newTestWorker(store, &fakeRenderer{}, testVideos("v1", "v2"))

	result, err := runner.ProcessPending(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
}

func TestProcessor_SkipsConcurrentlyClaimedJob(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 1))
	renderer := &fakeRenderer{}
	processor, _ := newTestWorker(store, renderer, testVideos("v1"))

	// Another invocation claimed the job after this one fetched it.
	stale, _ := store.GetJobByID(context.Background(), "j1")
	_, err := store.ClaimJob(context.Background(), "j1")
	require.NoError(t, err)

	result, err := processor.ProcessJob(context.Background(), stale)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.False(t, result.Success)
	assert.Zero(t, renderer.callCount())

	unchanged, _ := store.GetJobByID(context.Background(), "j1")
	assert.Equal(t, models.JobStatusProcessing, unchanged.Status)
}

type staleFetchStore struct {
	*fakeJobStore
}

// FetchPendingJobs hands out a stale pending snapshot of every job, modeling
// an overlapping invocation that claimed the rows after this fetch.
func (s *staleFetchStore) FetchPendingJobs(ctx context.Context, limit int) ([]*models.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	var stale []*models.ExportJob
	for _, job := range s.jobs {
		if len(stale) < limit {
			copied := *job
			copied.Status = models.JobStatusPending
			stale = append(stale, &copied)
		}
	}
	return stale, nil
}

func TestRunner_SkippedJobsNotCountedAsFailed(t *testing.T) {
	store := newFakeJobStore()
	store.addJob(testJob("j1", "v1", 1))
	_, err := store.ClaimJob(context.Background(), "j1")
	require.NoError(t, err)

	cfg := workerTestConfig()
	log := workerTestLogger(cfg)
	wrapped := &staleFetchStore{fakeJobStore: store}
	processor := NewProcessor(wrapped, &fakeVideoStore{videos: testVideos("v1")}, &fakeRedisStore{}, &fakeRenderer{}, log)
	runner := NewRunner(cfg, wrapped, processor, log)

	result, err := runner.ProcessPending(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, result.Processed, result.Succeeded+result.Failed)
}

func TestRunner_EmptyQueue(t *testing.T) {
	store := newFakeJobStore()
	_, runner := newTestWorker(store, &fakeRenderer{}, testVideos())

	result, err := runner.ProcessPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.NotNil(t, result.Results)
}
