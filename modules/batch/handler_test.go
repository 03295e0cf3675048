package batch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemoRouter() *mux.Router {
	store := NewMemoryStore(0)
	svc := NewService(store, NewDemoDispatcher(store), newLimiter(3), 50)

	r := mux.NewRouter()
	NewHandler(svc, false).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_SubmitThenStatus(t *testing.T) {
	r := newDemoRouter()

	rec := serve(r, http.MethodPost, "/api/batch-process",
		`{"images":[{"imageUrl":"https://cdn.example.com/1.png","enhancements":["colorCorrection"]},{"imageUrl":"https://cdn.example.com/2.png"}],"priority":"low"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var submitted SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.True(t, submitted.Success)
	assert.True(t, submitted.Demo)
	assert.Equal(t, 2, submitted.TotalImages)
	assert.Equal(t, 4, submitted.EstimatedTime)
	assert.InDelta(t, (2*BaseCost+ColorCorrectionCost)*0.7, submitted.EstimatedCost, 1e-9)

	rec = serve(r, http.MethodGet, "/api/batch-process?batchId="+submitted.BatchID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, submitted.BatchID, status.BatchID)
	assert.Equal(t, 1, status.CompletedTasks)
	assert.Equal(t, 0, status.FailedTasks)
	assert.Equal(t, "low", string(status.Priority))
}

func TestHandler_Errors(t *testing.T) {
	r := newDemoRouter()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
		code   string
	}{
		{"missing batch id", http.MethodGet, "/api/batch-process", "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown batch id", http.MethodGet, "/api/batch-process?batchId=nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"malformed json", http.MethodPost, "/api/batch-process", `{"images":`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"empty images", http.MethodPost, "/api/batch-process", `{"images":[]}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestHandler_Options(t *testing.T) {
	rec := serve(newDemoRouter(), http.MethodOptions, "/api/batch-process", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
