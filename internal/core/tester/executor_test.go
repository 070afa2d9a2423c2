package tester

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func statusServer(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExecutePassPolicy(t *testing.T) {
	tests := []struct {
		status int
		passed bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{http.StatusNotModified, true},
		{http.StatusNotFound, true},
		{499, true},
		{http.StatusInternalServerError, false},
		{http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := statusServer(t, tt.status, "text/plain", "x")
			exec := NewExecutor(server.Client())

			result := exec.Execute(context.Background(), Step{
				Endpoint: EndpointDescriptor{Path: "/health", Method: "GET"},
				BaseURL:  server.URL,
			})

			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Empty(t, result.Error)
		})
	}
}

func TestExecuteSendsResolvedRequest(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   map[string]any
		gotHeader string
		gotCT     string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeader = r.Header.Get("X-Tenant")
		gotCT = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7}`)
	}))
	defer server.Close()

	body := map[string]any{"name": "{name}"}
	step := Step{
		Endpoint: EndpointDescriptor{
			OperationID: "createItem",
			Path:        "/orgs/{org}/items",
			Method:      "POST",
			Parameters:  []ParameterDescriptor{{Name: "org", In: LocationPath}},
		},
		BaseURL:   server.URL + "/",
		Variables: Vars{"org": "acme", "name": "ignored", "headers": map[string]any{"X-Tenant": "t1"}},
		Fixtures:  Fixtures{"createItem": map[string]any{"body": body}},
	}

	result := NewExecutor(server.Client()).Execute(context.Background(), step)

	require.Empty(t, result.Error)
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "/orgs/acme/items", gotPath)
	assert.Equal(t, map[string]any{"name": "{name}"}, gotBody)
	assert.Equal(t, "t1", gotHeader)
	assert.Equal(t, "application/json", gotCT)

	assert.Equal(t, "/orgs/{org}/items", result.Endpoint)
	assert.Equal(t, "POST", result.Method)
	assert.Equal(t, http.StatusCreated, result.Status)
	assert.True(t, result.Passed)
	assert.Equal(t, map[string]any{"id": json.Number("7")}, result.Response)
	assert.Equal(t, server.URL+"/orgs/acme/items", result.URL)
}

func TestExecuteGetSendsNoBody(t *testing.T) {
	var gotLen int64 = -1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotLen = int64(len(b))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	result := NewExecutor(server.Client()).Execute(context.Background(), Step{
		Endpoint: EndpointDescriptor{OperationID: "getUser", Path: "/users/{id}", Method: "GET"},
		BaseURL:  server.URL,
		Fixtures: Fixtures{"getUser": map[string]any{
			"parameters": map[string]any{"id": 7},
			"body":       map[string]any{"unused": true},
		}},
	})

	assert.Equal(t, int64(0), gotLen)
	assert.Equal(t, server.URL+"/users/7", result.URL)
	assert.Equal(t, NoData, result.Response)
	assert.True(t, result.Passed)
}

func TestExecutePreservesFalsyJSON(t *testing.T) {
	for body, want := range map[string]any{"0": json.Number("0"), "false": false} {
		server := statusServer(t, http.StatusOK, "application/json", body)
		result := NewExecutor(server.Client()).Execute(context.Background(), Step{
			Endpoint: EndpointDescriptor{Path: "/v", Method: "GET"},
			BaseURL:  server.URL,
		})
		assert.Equal(t, want, result.Response, body)
	}
}

func TestExecuteKeepsLargeIntegers(t *testing.T) {
	server := statusServer(t, http.StatusOK, "application/json", `{"id":12345678901234567891}`)
	result := NewExecutor(server.Client()).Execute(context.Background(), Step{
		Endpoint: EndpointDescriptor{Path: "/big", Method: "GET"},
		BaseURL:  server.URL,
	})

	require.Empty(t, result.Error)
	assert.Equal(t, map[string]any{"id": json.Number("12345678901234567891")}, result.Response)

	encoded, err := json.Marshal(result.Response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":12345678901234567891}`, string(encoded))
}

func TestExecuteConcurrentSteps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":`+strings.TrimPrefix(r.URL.Path, "/users/")+`}`)
	}))
	defer server.Close()

	exec := NewExecutor(server.Client())
	endpoint := EndpointDescriptor{
		OperationID: "getUser",
		Path:        "/users/{id}",
		Method:      "GET",
		Parameters:  []ParameterDescriptor{{Name: "id", In: LocationPath}},
	}

	const steps = 32
	results := make([]StepResult, steps)
	var wg sync.WaitGroup
	for i := 0; i < steps; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = exec.Execute(context.Background(), Step{
				Endpoint: endpoint,
				BaseURL:  server.URL,
				Fixtures: Fixtures{"getUser": map[string]any{"parameters": map[string]any{"id": i}}},
			})
		}()
	}
	wg.Wait()

	for i, result := range results {
		id := strconv.Itoa(i)
		assert.Empty(t, result.Error, id)
		assert.Equal(t, server.URL+"/users/"+id, result.URL)
		assert.Equal(t, map[string]any{"id": json.Number(id)}, result.Response)
		assert.True(t, result.Passed, id)
	}
}

func TestExecuteMeasuresElapsedTime(t *testing.T) {
	server := statusServer(t, http.StatusOK, "", "ok")
	start := time.Unix(0, 0)
	calls := 0
	clock := func() time.Time {
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(1500 * time.Microsecond)
	}

	result := NewExecutor(server.Client(), WithClock(clock)).Execute(context.Background(), Step{
		Endpoint: EndpointDescriptor{Path: "/", Method: "GET"},
		BaseURL:  server.URL,
	})

	assert.InDelta(t, 1.5, result.Time, 1e-9)
}

func TestExecuteTransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	result := NewExecutor(doer).Execute(context.Background(), Step{
		Endpoint:  EndpointDescriptor{Path: "/users/{id}", Method: "delete"},
		BaseURL:   "http://unreachable.test",
		Variables: Vars{"id": 3},
	})

	assert.Equal(t, 0, result.Status)
	assert.Zero(t, result.Time)
	assert.False(t, result.Passed)
	assert.Nil(t, result.Response)
	assert.Contains(t, result.Error, "connection refused")
	assert.Equal(t, "http://unreachable.test/users/3", result.URL)
	assert.Equal(t, "DELETE", result.Method)
}

func TestExecuteMalformedURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := NewMockDoer(ctrl)

	result := NewExecutor(doer).Execute(context.Background(), Step{
		Endpoint: EndpointDescriptor{Path: "/x", Method: "GET"},
		BaseURL:  "http://bad host\x7f",
	})

	assert.Equal(t, 0, result.Status)
	assert.False(t, result.Passed)
	assert.NotEmpty(t, result.Error)
	assert.True(t, strings.HasPrefix(result.URL, "http://bad host"))
}

func TestExecuteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := NewExecutor(server.Client(), WithTimeout(20*time.Millisecond)).Execute(context.Background(), Step{
		Endpoint: EndpointDescriptor{Path: "/slow", Method: "GET"},
		BaseURL:  server.URL,
	})

	assert.Equal(t, 0, result.Status)
	assert.False(t, result.Passed)
	assert.NotEmpty(t, result.Error)
}

func TestExecuteUnencodableBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := NewMockDoer(ctrl)

	result := NewExecutor(doer).Execute(context.Background(), Step{
		Endpoint: EndpointDescriptor{OperationID: "op", Path: "/x", Method: "PUT"},
		BaseURL:  "http://api.test",
		Fixtures: Fixtures{"op": map[string]any{"body": map[string]any{"f": func() {}}}},
	})

	assert.False(t, result.Passed)
	assert.Contains(t, result.Error, "failed to marshal body")
}

func TestStepResultJSON(t *testing.T) {
	data, err := json.Marshal(StepResult{Endpoint: "/x", Method: "GET", URL: "http://a/x", Error: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoint":"/x","method":"GET","status":0,"time":0,"passed":false,"error":"boom","url":"http://a/x"}`, string(data))
}
