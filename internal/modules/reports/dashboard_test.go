package reports

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioncore/qrex/internal/clients/estimator"
)

func sampleResult() *estimator.Result {
	return &estimator.Result{
		PhysicalQubits:       25200,
		AlgorithmicQubits:    11616,
		LogicalQubits:        121,
		CodeDistance:         11,
		PhysicalPerLogical:   242,
		LogicalCycleTimeNs:   4400,
		LogicalErrorRate:     3e-8,
		TFactoryCount:        14,
		TFactoryQubits:       9680,
		TFactoryRuntimeNs:    46800,
		TStatesPerInvocation: 1,
		TCount:               800,
		RotationCount:        2800,
		RuntimeNs:            6.16e6,
		ErrorBudgetLogical:   1e-3 / 3,
		ErrorBudgetTStates:   1e-3 / 3,
		ErrorBudgetRotations: 1e-3 / 3,
	}
}

func TestBuildDashboard(t *testing.T) {
	d := BuildDashboard("job-1", "qubit_gate_ns_e3", sampleResult())

	assert.Equal(t, "job-1", d.JobID)
	assert.Equal(t, "qubit_gate_ns_e3", d.Target)
	require.Len(t, d.Groups, 5)

	titles := make([]string, 0, len(d.Groups))
	for _, g := range d.Groups {
		titles = append(titles, g.Title)
	}
	assert.Equal(t, []string{
		"Physical resource estimates",
		"T-factory parameters",
		"Logical qubit parameters",
		"Pre-layout logical resources",
		"Error budget",
	}, titles)

	physical := d.Groups[0]
	require.Len(t, physical.Rows, 3)
	assert.Equal(t, "Total physical qubits", physical.Rows[0].Label)
	assert.Equal(t, "25,200", physical.Rows[0].Value)
	assert.Equal(t, "6.16 ms", physical.Rows[2].Value)

	logical := d.Groups[2]
	assert.Equal(t, "4.40 us", logical.Rows[2].Value)
	assert.Equal(t, "3.00e-08", logical.Rows[3].Value)

	budget := d.Groups[4]
	assert.Equal(t, "3.33e-04", budget.Rows[0].Value)
}

func TestRenderText(t *testing.T) {
	d := BuildDashboard("job-1", "qubit_gate_ns_e3", sampleResult())

	var buf bytes.Buffer
	RenderText(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "Physical resource estimates")
	assert.Contains(t, out, "Error budget")
	assert.Contains(t, out, "Total physical qubits")
	assert.Contains(t, out, "25,200")
}

func TestRenderHTML(t *testing.T) {
	d := BuildDashboard("job-1", "qubit_gate_ns_e3", sampleResult())

	var buf bytes.Buffer
	RenderHTML(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "<table")
	assert.Contains(t, out, "Total physical qubits")
	assert.Equal(t, len(d.Groups), strings.Count(out, "<table"))
}

func TestRenderComparisonText(t *testing.T) {
	a := BuildDashboard("job-a", "qubit_gate_ns_e3", sampleResult())

	fast := sampleResult()
	fast.PhysicalQubits = 1234567
	fast.RuntimeNs = 1.1e6
	b := BuildDashboard("job-b", "qubit_maj_ns_e6", fast)

	var buf bytes.Buffer
	RenderComparisonText(&buf, Comparison{Dashboards: []Dashboard{a, b}})
	out := buf.String()

	// One column per target, one wide table per group.
	assert.Contains(t, out, "qubit_gate_ns_e3")
	assert.Contains(t, out, "qubit_maj_ns_e6")
	assert.Contains(t, out, "25,200")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "1.10 ms")
}

func TestRenderComparisonEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderComparisonText(&buf, Comparison{})
	assert.Empty(t, buf.String())
}

func TestCellAtOutOfRange(t *testing.T) {
	d := BuildDashboard("job-1", "t", sampleResult())

	assert.Equal(t, "25,200", cellAt(d, 0, 0))
	assert.Equal(t, "", cellAt(d, 99, 0))
	assert.Equal(t, "", cellAt(d, 0, 99))
}
