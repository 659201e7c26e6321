package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventsapi/config"
	"eventsapi/internal/adapters/storage"
	"eventsapi/internal/delivery/http/middleware"
	"eventsapi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingService struct{ domain.EventService }

func (panickingService) Ping(context.Context) error { panic("store exploded") }

func (panickingService) GetEvent(context.Context, string) (*domain.Event, error) {
	return nil, domain.ErrNotFound
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		UploadBackend:      config.UploadDisk,
		UploadDir:          t.TempDir(),
		MaxMultipartMemory: 1 << 20,
		RequestTimeout:     time.Second,
		CORSAllowedOrigins: []string{"http://a.test"},
	}
}

func TestNewHandler(t *testing.T) {
	h := newHandler(testConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)), panickingService{})

	t.Run("not found carries request id and cors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v3/app/events/65a1b2c3d4e5f60718293a4b", nil)
		req.Header.Set("Origin", "http://a.test")
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "http://a.test", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("panic is recovered", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "internal_error")
	})
}

func TestNewFileStorage_Disk(t *testing.T) {
	cfg := testConfig(t)
	fs, err := newFileStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.DiskStorage{}, fs)
}

func TestNewFileStorage_MinioIncomplete(t *testing.T) {
	cfg := testConfig(t)
	cfg.UploadBackend = config.UploadMinio
	_, err := newFileStorage(context.Background(), cfg)
	require.Error(t, err)
}
