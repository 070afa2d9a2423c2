package storage

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Octrafic/stepexec/internal/core/tester"
)

func TestHistoryAppendAndList(t *testing.T) {
	h, err := NewHistory(t.TempDir())
	require.NoError(t, err)

	first, err := h.Append("getUser", tester.StepResult{Endpoint: "/users/{id}", Method: "GET", Status: 200, Passed: true, URL: "http://x/users/7", Response: map[string]any{"id": 7}})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	_, err = h.Append("deleteUser", tester.StepResult{Endpoint: "/users/{id}", Method: "DELETE", Error: "request failed", URL: "http://x/users/7"})
	require.NoError(t, err)

	records, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, "getUser", records[0].Operation)
	assert.Equal(t, map[string]any{"id": float64(7)}, records[0].Result.Response)
	assert.Equal(t, "request failed", records[1].Result.Error)

	latest, err := h.List(1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "deleteUser", latest[0].Operation)
}

func TestHistoryListEmpty(t *testing.T) {
	h, err := NewHistory(t.TempDir())
	require.NoError(t, err)

	records, err := h.List(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryConcurrentAppend(t *testing.T) {
	h, err := NewHistory(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Append("op", tester.StepResult{Status: 200, Passed: true})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := h.List(0)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}
