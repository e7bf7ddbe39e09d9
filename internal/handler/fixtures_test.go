package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/middleware"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	"github.com/noah-isme/educentral-admin-api/internal/service"
	"github.com/noah-isme/educentral-admin-api/pkg/genai"
	"github.com/noah-isme/educentral-admin-api/pkg/jobs"
	"github.com/noah-isme/educentral-admin-api/pkg/storage"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
	Error      map[string]interface{} `json:"error"`
}

type queueRecorder struct {
	mu   sync.Mutex
	jobs []jobs.Job
}

func (q *queueRecorder) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

type testAPI struct {
	router *gin.Engine
	stores *repository.Stores
	queue  *queueRecorder
	auth   *service.AuthService
}

func newTestAPI(t *testing.T, secure bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := repository.NewMemoryStores(true)
	clock := func() time.Time { return time.Date(2024, time.August, 14, 9, 0, 0, 0, time.UTC) }
	ids := importer.NewSequenceGenerator(clock)
	queue := &queueRecorder{}
	metrics := service.NewMetricsService()

	auth, err := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: "handler-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "educentral-test",
		AdminEmail:        "admin@educentral.com",
		AdminPassword:     "password",
	}, nil, nil)
	require.NoError(t, err)

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exporter := service.NewExportService(service.ExportSources{
		Users:    stores.Users,
		Courses:  stores.Courses,
		Events:   stores.Events,
		Invoices: stores.Invoices,
		Leaves:   stores.Leaves,
	}, files, storage.NewSignedURLSigner("handler-secret", time.Hour), service.ExportConfig{APIPrefix: "/api/v1"}, nil)

	generation := service.NewInvoiceGenerationService(stores.Invoices, stores.Users, genai.New("", "", "", time.Second, true),
		true, ids, metrics, nil, nil, nil)

	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Users:    stores.Users,
		Courses:  stores.Courses,
		Events:   stores.Events,
		Invoices: stores.Invoices,
		Leaves:   stores.Leaves,
	})
	imports := service.NewImportService(service.ImportServiceParams{
		Users:       stores.Users,
		Courses:     stores.Courses,
		Events:      stores.Events,
		Pipeline:    importer.NewPipeline(importer.NewNormalizer(clock), ids, importer.Lenient),
		Metrics:     metrics,
		MaxFileSize: 1 << 20,
	})
	exportJobs := service.NewExportJobService(stores.ExportJobs, queue, exporter, ids, nil, nil, service.ExportJobConfig{MaxRetries: 1})

	h := Handlers{
		Auth:       NewAuthHandler(auth),
		Users:      NewUserHandler(service.NewUserService(stores.Users, ids, nil, nil)),
		Courses:    NewCourseHandler(service.NewCourseService(stores.Courses, ids, nil, nil)),
		Events:     NewEventHandler(service.NewEventService(stores.Events, ids, nil, nil)),
		Invoices:   NewInvoiceHandler(service.NewInvoiceService(stores.Invoices, stores.Users, ids, nil, nil), generation),
		Leaves:     NewLeaveHandler(service.NewLeaveService(stores.Leaves, stores.Users, ids, nil, nil, nil)),
		Messages:   NewMessageHandler(service.NewMessageService(stores.Messages, stores.Users, queue, ids, nil, nil)),
		Attendance: NewAttendanceHandler(service.NewAttendanceService(stores.Attendance, stores.Users, nil, nil)),
		Dashboard:  NewDashboardHandler(dashboard, service.NewAnalyticsService(stores.Static, nil, time.Minute, nil)),
		Timetable:  NewTimetableHandler(service.NewTimetableService(stores.Static)),
		Imports:    NewImportHandler(imports),
		Exports:    NewExportHandler(exportJobs),
	}

	guard := middleware.Anonymous()
	if secure {
		guard = middleware.JWT(auth)
	}
	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.WithResponseMeta())
	Register(api, h, guard)

	return &testAPI{router: router, stores: stores, queue: queue, auth: auth}
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, env responseEnvelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}
