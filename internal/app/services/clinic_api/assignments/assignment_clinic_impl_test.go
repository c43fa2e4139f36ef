package assignments

import (
	"clinicdesk-service/internal/app/services/clinic_api"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(serverURL string) *clinic_api.Client {
	return &clinic_api.Client{
		BaseUrl:        serverURL,
		HTTPClient:     &http.Client{Timeout: time.Second},
		Limiter:        clinic_api.NewRateLimiter(0, 1),
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
		Log:            zap.NewNop(),
	}
}

func TestFindAssignedServiceIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/appointments/5/services", r.URL.Path)
		w.Write([]byte(`[{"service_id": 3, "name": "Lab"}, {"service_id": 1, "name": "Exam"}]`))
	}))
	defer server.Close()

	source := NewAssignmentClinicClient(newClient(server.URL), zap.NewNop())
	serviceIDs, err := source.FindAssignedServiceIDs(context.Background(), credential.NewBearer("token"), 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, serviceIDs)
}

func TestWriteAssignment(t *testing.T) {
	t.Run("Returns the total computed upstream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/appointments/5/services", r.URL.Path)

			body, _ := io.ReadAll(r.Body)
			var request writeAssignmentRequest
			require.NoError(t, json.Unmarshal(body, &request))
			assert.ElementsMatch(t, []int64{1, 2}, request.ServiceIDs)
			assert.True(t, request.IsCompleted)

			w.Write([]byte(`{"total_amount": 300000}`))
		}))
		defer server.Close()

		source := NewAssignmentClinicClient(newClient(server.URL), zap.NewNop())
		total, err := source.WriteAssignment(context.Background(), credential.NewBearer("token"), 5, []int64{1, 2}, true)
		require.NoError(t, err)
		assert.Equal(t, "300000", total.String())
	})

	t.Run("Accepts camel case and string amounts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"totalAmount": "1250.75"}`))
		}))
		defer server.Close()

		source := NewAssignmentClinicClient(newClient(server.URL), zap.NewNop())
		total, err := source.WriteAssignment(context.Background(), credential.NewBearer("token"), 5, []int64{1}, true)
		require.NoError(t, err)
		assert.Equal(t, "1250.75", total.String())
	})

	t.Run("Missing total is a decode failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		source := NewAssignmentClinicClient(newClient(server.URL), zap.NewNop())
		_, err := source.WriteAssignment(context.Background(), credential.NewBearer("token"), 5, []int64{1}, true)
		assert.ErrorIs(t, err, exceptions.ErrKindServer)
	})

	t.Run("Failed write is not retried", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		source := NewAssignmentClinicClient(newClient(server.URL), zap.NewNop())
		_, err := source.WriteAssignment(context.Background(), credential.NewBearer("token"), 5, []int64{1}, true)
		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}
