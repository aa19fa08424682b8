package jobs

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioncore/qrex/internal/modules/targets"
)

func TestMarkFrontier_SingleTradeoffCurve(t *testing.T) {
	// A clean space/time tradeoff: everything is Pareto-minimal.
	points := []FrontierPoint{
		{Target: "a", PhysicalQubits: 100, RuntimeNs: 900},
		{Target: "b", PhysicalQubits: 200, RuntimeNs: 500},
		{Target: "c", PhysicalQubits: 300, RuntimeNs: 100},
	}

	markFrontier(points)

	for _, p := range points {
		assert.True(t, p.OnFrontier, "target %s", p.Target)
	}
}

func TestMarkFrontier_DominatedPoint(t *testing.T) {
	points := []FrontierPoint{
		{Target: "a", PhysicalQubits: 100, RuntimeNs: 500},
		{Target: "b", PhysicalQubits: 200, RuntimeNs: 900}, // Worse on both axes
		{Target: "c", PhysicalQubits: 300, RuntimeNs: 100},
	}

	markFrontier(points)

	assert.True(t, points[0].OnFrontier)
	assert.False(t, points[1].OnFrontier)
	assert.True(t, points[2].OnFrontier)
}

func TestMarkFrontier_TiesOnOneAxis(t *testing.T) {
	// Equal qubits, different runtimes: only the faster one is minimal.
	points := []FrontierPoint{
		{Target: "slow", PhysicalQubits: 100, RuntimeNs: 900},
		{Target: "fast", PhysicalQubits: 100, RuntimeNs: 500},
	}

	markFrontier(points)

	assert.False(t, points[0].OnFrontier)
	assert.True(t, points[1].OnFrontier)
}

func TestMarkFrontier_DuplicatePointsBothSurvive(t *testing.T) {
	// Identical points dominate neither; both stay on the frontier.
	points := []FrontierPoint{
		{Target: "a", PhysicalQubits: 100, RuntimeNs: 500},
		{Target: "b", PhysicalQubits: 100, RuntimeNs: 500},
	}

	markFrontier(points)

	assert.True(t, points[0].OnFrontier)
	assert.True(t, points[1].OnFrontier)
}

func TestMarkFrontier_SinglePoint(t *testing.T) {
	points := []FrontierPoint{
		{Target: "only", PhysicalQubits: 100, RuntimeNs: 500},
	}

	markFrontier(points)

	assert.True(t, points[0].OnFrontier)
}

// succeedWithResult walks a job through the legal transitions and attaches
// a minimal result document.
func succeedWithResult(t *testing.T, svc *Service, id string, qubits int64, runtimeNs float64) {
	t.Helper()
	require.NoError(t, svc.repo.Transition(id, StatusPending, StatusSubmitted))
	require.NoError(t, svc.repo.Transition(id, StatusSubmitted, StatusExecuting))
	require.NoError(t, svc.repo.Transition(id, StatusExecuting, StatusSucceeded))
	doc := fmt.Sprintf(`{"physical_qubits":%d,"runtime_ns":%g}`, qubits, runtimeNs)
	require.NoError(t, svc.repo.StoreResult(id, json.RawMessage(doc)))
}

func TestService_Frontier(t *testing.T) {
	svc := newTestService(t)

	// Three targets in one group. Submission order deliberately puts the
	// largest footprint first so the sort is observable.
	specs := []struct {
		preset    string
		qubits    int64
		runtimeNs float64
	}{
		{targets.QubitMajNsE6, 30000, 100},
		{targets.QubitGateNsE3, 10000, 900},
		{targets.QubitGateNsE4, 20000, 2000}, // Dominated by both others
	}

	for _, spec := range specs {
		req := testCreateRequest(t, "frontier "+spec.preset)
		profile, ok := targets.DefaultProfile(spec.preset)
		require.True(t, ok)
		req.Target = profile
		req.GroupID = "grp-1"

		job, deduped, err := svc.Create(req)
		require.NoError(t, err)
		require.False(t, deduped)
		succeedWithResult(t, svc, job.ID, spec.qubits, spec.runtimeNs)
	}

	report, err := svc.Frontier("grp-1")
	require.NoError(t, err)
	require.Len(t, report.Points, 3)

	// Sorted ascending by physical qubits regardless of insertion order.
	assert.Equal(t, targets.QubitGateNsE3, report.Points[0].Target)
	assert.Equal(t, targets.QubitGateNsE4, report.Points[1].Target)
	assert.Equal(t, targets.QubitMajNsE6, report.Points[2].Target)

	assert.True(t, report.Points[0].OnFrontier)
	assert.False(t, report.Points[1].OnFrontier)
	assert.True(t, report.Points[2].OnFrontier)

	assert.NotZero(t, report.QubitRuntimeCorrelation)
}

func TestService_Frontier_UnknownGroup(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Frontier("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
