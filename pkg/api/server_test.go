package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netobserve/topoview/pkg/layoutstore"
	"github.com/netobserve/topoview/pkg/metrics"
	"github.com/netobserve/topoview/pkg/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := layoutstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	srv := NewServer(store, nil, metrics.NewRegistry(), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func putJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubTopologyCRUD(t *testing.T) {
	ts := newTestServer(t)

	create := map[string]any{
		"name":      "server room",
		"deviceIds": []uint64{1, 2, 3},
		"layout": map[string]any{
			"nodePositions": map[string]any{
				"1": map[string]float64{"x": 10, "y": 20},
			},
		},
	}

	// Create
	resp := postJSON(t, ts.URL+"/api/subtopologies", create)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.SubTopology
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "server room", created.Name)
	assert.Equal(t, model.Position{X: 10, Y: 20}, created.Layout.NodePositions[1])
	assert.False(t, created.CreatedAt.IsZero())

	// Get
	resp, err := http.Get(fmt.Sprintf("%s/api/subtopologies/%s", ts.URL, created.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched model.SubTopology
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	resp.Body.Close()
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Layout.NodePositions, fetched.Layout.NodePositions)

	// List
	resp, err = http.Get(ts.URL + "/api/subtopologies")
	require.NoError(t, err)
	var list []model.SubTopology
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Len(t, list, 1)

	// Replace wholesale: stored positions do not merge into the new document.
	replace := map[string]any{
		"name":      "renamed",
		"deviceIds": []uint64{4},
		"layout": map[string]any{
			"nodePositions": map[string]any{
				"4": map[string]float64{"x": 1, "y": 2},
			},
		},
	}
	resp = putJSON(t, fmt.Sprintf("%s/api/subtopologies/%s", ts.URL, created.ID), replace)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replaced model.SubTopology
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&replaced))
	resp.Body.Close()
	assert.Equal(t, "renamed", replaced.Name)
	assert.Len(t, replaced.Layout.NodePositions, 1)
	assert.NotContains(t, replaced.Layout.NodePositions, uint64(1))
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)
	assert.True(t, replaced.UpdatedAt.After(replaced.CreatedAt) || replaced.UpdatedAt.Equal(replaced.CreatedAt))

	// Delete
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/subtopologies/%s", ts.URL, created.ID), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(fmt.Sprintf("%s/api/subtopologies/%s", ts.URL, created.ID))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubTopologyValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"deviceIds": []uint64{1}}},
		{"no members", map[string]any{"name": "x"}},
		{"position for non-member", map[string]any{
			"name":      "x",
			"deviceIds": []uint64{1},
			"layout": map[string]any{
				"nodePositions": map[string]any{
					"9": map[string]float64{"x": 0, "y": 0},
				},
			},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/subtopologies", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSubTopologyNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/subtopologies/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/subtopologies/nope/load", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLayoutEndpointWithoutSession(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/layout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestModeEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := putJSON(t, ts.URL+"/api/layout/mode", map[string]string{"mode": "diagonal"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = putJSON(t, ts.URL+"/api/layout/mode", map[string]string{"mode": "free"})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/layout/fit")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
