package cmdsurface

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskstack/hqpik/internal/manager"
	"github.com/taskstack/hqpik/internal/oracle"
	"github.com/taskstack/hqpik/internal/solver"
	"github.com/taskstack/hqpik/internal/state"
	"github.com/taskstack/hqpik/internal/testutil"
)

type fixedStateProvider struct{ st state.Robot }

func (f fixedStateProvider) CurrentState() state.Robot { return f.st }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tree := testutil.OneJointChain(t)
	mgr := manager.New(tree, tree.DOF(), solver.NewDefaultAdapter(0.01), oracle.Fixed{}, nil, nil)
	sp := fixedStateProvider{st: state.New(time.Now(), tree, []float64{0}, nil)}
	return NewServer(mgr, sp)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestSetTaskThenListAndMeasures(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/tasks/t1", setTaskRequest{
		Type:      "JointConfiguration",
		DynType:   "FirstOrder",
		Priority:  1,
		Active:    true,
		Monitored: true,
		DefParams: []string{"j1", "0.5"},
		DynParams: []string{"1.0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/v1/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []taskInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].Name)
	assert.True(t, tasks[0].Active)

	rec = doJSON(t, s, http.MethodGet, "/v1/tasks/t1/measures", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var measures measuresResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &measures))
	assert.Equal(t, "t1", measures.Name)

	rec = doJSON(t, s, http.MethodGet, "/v1/tasks/monitored", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"t1"}, names)

	rec = doJSON(t, s, http.MethodGet, "/v1/tasks/t1/telemetry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var telemetry telemetryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &telemetry))
	assert.Equal(t, "t1", telemetry.Name)
	require.Len(t, telemetry.E, 1)
}

func TestSetTaskUnknownFunctionType(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/tasks/t1", setTaskRequest{
		Type:      "NotARealFunction",
		DynType:   "FirstOrder",
		DefParams: []string{},
		DynParams: []string{"1.0"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeactivateUnknownTaskReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/tasks/ghost/deactivate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetPrimitiveThenList(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/primitives/p1", setPrimitiveRequest{
		Type:    "Point",
		FrameID: "ee",
		Visible: true,
		Params:  []string{"0", "0", "0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/v1/primitives", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var prims []primitiveInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prims))
	require.Len(t, prims, 1)
	assert.Equal(t, "p1", prims[0].Name)
	assert.Equal(t, "point", prims[0].Kind)
}

func TestSetPrimitiveWrongParamCount(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/v1/primitives/p1", setPrimitiveRequest{
		Type:    "Sphere",
		FrameID: "ee",
		Params:  []string{"0", "0"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveAllPrimitivesEmptiesList(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/v1/primitives/p1", setPrimitiveRequest{
		Type: "Point", FrameID: "ee", Params: []string{"0", "0", "0"},
	})
	rec := doJSON(t, s, http.MethodDelete, "/v1/primitives", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/v1/primitives", nil)
	var prims []primitiveInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prims))
	assert.Empty(t, prims)
}
