package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/jobs"
	"github.com/noah-isme/educentral-admin-api/pkg/storage"
)

type exportFixture struct {
	stores   *repository.Stores
	exporter *ExportService
	jobs     *ExportJobService
	worker   *ExportWorker
	queue    *queueStub
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	stores := seededStores()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exporter := NewExportService(ExportSources{
		Users:    stores.Users,
		Courses:  stores.Courses,
		Events:   stores.Events,
		Invoices: stores.Invoices,
		Leaves:   stores.Leaves,
	}, files, storage.NewSignedURLSigner("export-secret", time.Hour), ExportConfig{APIPrefix: "/api/v1"}, nil)
	queue := &queueStub{}
	return &exportFixture{
		stores:   stores,
		exporter: exporter,
		jobs:     NewExportJobService(stores.ExportJobs, queue, exporter, testIDs(), nil, nil, ExportJobConfig{MaxRetries: 2}),
		worker:   NewExportWorker(stores.ExportJobs, exporter, 2, nil),
		queue:    queue,
	}
}

func TestExportDatasetFlattensCollections(t *testing.T) {
	f := newExportFixture(t)

	ds, err := f.exporter.Dataset(context.Background(), models.ExportInvoices)
	require.NoError(t, err)
	assert.Equal(t, "Invoices", ds.Title)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, "INV003", ds.Rows[0]["ID"])
	assert.Equal(t, "300.00", ds.Rows[0]["Total"])

	ds, err = f.exporter.Dataset(context.Background(), models.ExportLeaves)
	require.NoError(t, err)
	assert.Equal(t, "LR003", ds.Rows[0]["ID"])

	_, err = f.exporter.Dataset(context.Background(), "grades")
	assert.Error(t, err)
}

func TestExportJobLifecycle(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()

	job, err := f.jobs.CreateJob(ctx, models.ExportRequest{Resource: models.ExportCourses, Format: models.ExportFormatCSV}, "admin")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(job.ID, "EXP"))
	assert.Equal(t, models.ExportQueued, job.Status)

	queued := f.queue.enqueued()
	require.Len(t, queued, 1)
	require.NoError(t, f.worker.Handle(ctx, queued[0]))

	status, err := f.jobs.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	assert.True(t, strings.HasPrefix(*status.ResultURL, "/api/v1/exports/download?token="))

	download, err := f.jobs.ResolveDownload(ctx, extractToken(*status.ResultURL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "text/csv", download.ContentType)
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CSE101")
}

func TestExportJobRejectsBadInput(t *testing.T) {
	f := newExportFixture(t)

	_, err := f.jobs.CreateJob(context.Background(), models.ExportRequest{Resource: "grades", Format: models.ExportFormatCSV}, "admin")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.jobs.ResolveDownload(context.Background(), "not.a.valid.token")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.jobs.GetStatus(context.Background(), "EXP404")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestExportJobEnqueueFailureMarksFailed(t *testing.T) {
	f := newExportFixture(t)
	f.queue.err = errors.New("queue exports not started")

	_, err := f.jobs.CreateJob(context.Background(), models.ExportRequest{Resource: models.ExportUsers, Format: models.ExportFormatPDF}, "admin")
	require.Error(t, err)

	all, err := f.jobs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.ExportFailed, all[0].Status)
}

type failingExporter struct{}

func (failingExporter) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	return nil, errors.New("render failed")
}

func TestExportWorkerRetriesThenFails(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()
	worker := NewExportWorker(f.stores.ExportJobs, failingExporter{}, 2, nil)

	job, err := f.jobs.CreateJob(ctx, models.ExportRequest{Resource: models.ExportEvents, Format: models.ExportFormatCSV}, "admin")
	require.NoError(t, err)

	require.Error(t, worker.Handle(ctx, jobs.Job{ID: job.ID, Attempt: 0}))
	status, _ := f.jobs.GetStatus(ctx, job.ID)
	assert.Equal(t, models.ExportQueued, status.Status)
	require.NotNil(t, status.ErrorMessage)

	require.Error(t, worker.Handle(ctx, jobs.Job{ID: job.ID, Attempt: 2}))
	status, _ = f.jobs.GetStatus(ctx, job.ID)
	assert.Equal(t, models.ExportFailed, status.Status)
	assert.NotNil(t, status.FinishedAt)
}

func TestExportRecoverPendingJobs(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()

	_, err := f.jobs.CreateJob(ctx, models.ExportRequest{Resource: models.ExportLeaves, Format: models.ExportFormatPDF}, "admin")
	require.NoError(t, err)
	f.jobs.RecoverPendingJobs(ctx)
	assert.Len(t, f.queue.enqueued(), 2)
}

func TestExtractToken(t *testing.T) {
	assert.Equal(t, "abc.def", extractToken("/api/v1/exports/download?token=abc.def"))
	assert.Empty(t, extractToken("/api/v1/exports/download"))
}
