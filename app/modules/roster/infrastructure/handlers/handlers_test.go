package rosterhandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	rosterservice "github.com/combine-day/combine-bot/app/modules/roster/application"
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	"github.com/combine-day/combine-bot/app/modules/roster/infrastructure/parsers"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
	"github.com/combine-day/combine-bot/internal/observability"
)

func newTestRouter(service rosterservice.Service, queue Enqueuer, asyncThreshold int) http.Handler {
	h := NewRosterHandlers(
		service,
		queue,
		parsers.NewFactory(),
		observability.NoOpLogger,
		noop.NewTracerProvider().Tracer("test"),
		asyncThreshold,
	)
	r := chi.NewRouter()
	RegisterRoutes(r, h, nil)
	return r
}

func multipartUpload(t *testing.T, filename, content, mapping string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	if mapping != "" {
		require.NoError(t, writer.WriteField("mapping", mapping))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

const sampleCSV = "First Name,Last Name,Number\nEthan,Garcia,1002\nMia,Lopez,7\n"

func TestHandlePreview(t *testing.T) {
	service := NewFakeImportService()
	service.PreviewFunc = func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportPreview, error) {
		assert.Equal(t, "evt-1", eventID)
		assert.Len(t, table.Rows, 2)
		return rosterservice.ImportPreview{RowCount: len(table.Rows), Headers: table.Headers}, nil
	}

	router := newTestRouter(service, nil, 0)

	body, contentType := multipartUpload(t, "roster.csv", sampleCSV, "")
	req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var preview rosterservice.ImportPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, 2, preview.RowCount)
}

func TestHandlePreview_MappingOverridesForwarded(t *testing.T) {
	service := NewFakeImportService()
	var got map[string]rosterdomain.CanonicalField
	service.PreviewFunc = func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportPreview, error) {
		got = overrides
		return rosterservice.ImportPreview{}, nil
	}

	router := newTestRouter(service, nil, 0)

	body, contentType := multipartUpload(t, "roster.csv", sampleCSV, `{"Number":"external_id"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rosterdomain.FieldExternalID, got["Number"])
}

func TestHandleImport(t *testing.T) {
	t.Run("committed import returns 200", func(t *testing.T) {
		service := NewFakeImportService()
		service.RunImportFunc = func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportOutcome, error) {
			return rosterservice.ImportOutcome{
				Committed: true,
				Summary:   rosterdomain.ImportSummary{TotalRows: 2, Created: 2},
			}, nil
		}
		router := newTestRouter(service, nil, 0)

		body, contentType := multipartUpload(t, "roster.csv", sampleCSV, "")
		req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/import", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var outcome rosterservice.ImportOutcome
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
		assert.Equal(t, 2, outcome.Summary.Created)
	})

	t.Run("awaiting mapping returns 422", func(t *testing.T) {
		service := NewFakeImportService()
		service.RunImportFunc = func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportOutcome, error) {
			return rosterservice.ImportOutcome{
				Committed: false,
				Plan:      rosterservice.ImportPlan{AwaitingMapping: true},
			}, nil
		}
		router := newTestRouter(service, nil, 0)

		body, contentType := multipartUpload(t, "roster.csv", sampleCSV, "")
		req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/import", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("large batch deferred to queue with 202", func(t *testing.T) {
		service := NewFakeImportService()
		queue := &FakeEnqueuer{}
		router := newTestRouter(service, queue, 1)

		body, contentType := multipartUpload(t, "roster.csv", sampleCSV, "")
		req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/import", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, []string{"roster.csv"}, queue.Enqueued())
		assert.Empty(t, service.Trace())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, float64(42), resp["job_id"])
	})

	t.Run("missing upload returns 400", func(t *testing.T) {
		router := newTestRouter(NewFakeImportService(), nil, 0)

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/import", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported file type returns 400", func(t *testing.T) {
		router := newTestRouter(NewFakeImportService(), nil, 0)

		body, contentType := multipartUpload(t, "roster.pdf", "junk", "")
		req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/import", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleImport_PastedText(t *testing.T) {
	service := NewFakeImportService()
	var rows int
	service.RunImportFunc = func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportOutcome, error) {
		rows = len(table.Rows)
		return rosterservice.ImportOutcome{Committed: true}, nil
	}
	router := newTestRouter(service, nil, 0)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("text", "first_name\tlast_name\nEthan\tGarcia\n"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, rows)
}

func TestHandlePlan_ServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown event", rosterdb.ErrEventNotFound, http.StatusNotFound},
		{"oversize batch", rosterservice.ErrBatchTooLarge, http.StatusRequestEntityTooLarge},
		{"repository failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewFakeImportService()
			service.PlanFunc = func(ctx context.Context, eventID string, table rosterdomain.RawTable, overrides map[string]rosterdomain.CanonicalField) (rosterservice.ImportPlan, error) {
				return rosterservice.ImportPlan{}, tt.err
			}
			router := newTestRouter(service, nil, 0)

			body, contentType := multipartUpload(t, "roster.csv", sampleCSV, "")
			req := httptest.NewRequest(http.MethodPost, "/api/events/evt-1/roster/plan", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client has its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}
