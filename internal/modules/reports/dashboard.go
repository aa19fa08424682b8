package reports

import (
	"github.com/helioncore/qrex/internal/clients/estimator"
)

// Row is one labeled value in a dashboard group.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Group is a titled set of related rows.
type Group struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Dashboard is the grouped view of one estimation result.
type Dashboard struct {
	JobID  string  `json:"job_id,omitempty"`
	Target string  `json:"target,omitempty"`
	Groups []Group `json:"groups"`
}

// BuildDashboard projects a result document into display groups.
func BuildDashboard(jobID, target string, r *estimator.Result) Dashboard {
	return Dashboard{
		JobID:  jobID,
		Target: target,
		Groups: []Group{
			{
				Title: "Physical resource estimates",
				Rows: []Row{
					{"Total physical qubits", FormatCount(r.PhysicalQubits)},
					{"Physical qubits for algorithm", FormatCount(r.AlgorithmicQubits)},
					{"Runtime", FormatDuration(r.RuntimeNs)},
				},
			},
			{
				Title: "T-factory parameters",
				Rows: []Row{
					{"T-factory copies", FormatCount(r.TFactoryCount)},
					{"Physical qubits per T-factory", FormatCount(r.TFactoryQubits)},
					{"T-factory runtime", FormatDuration(r.TFactoryRuntimeNs)},
					{"T-states per invocation", FormatCount(r.TStatesPerInvocation)},
				},
			},
			{
				Title: "Logical qubit parameters",
				Rows: []Row{
					{"QEC code distance", FormatCount(r.CodeDistance)},
					{"Physical qubits per logical qubit", FormatCount(r.PhysicalPerLogical)},
					{"Logical cycle time", FormatDuration(r.LogicalCycleTimeNs)},
					{"Logical qubit error rate", FormatRate(r.LogicalErrorRate)},
				},
			},
			{
				Title: "Pre-layout logical resources",
				Rows: []Row{
					{"Logical qubits", FormatCount(r.LogicalQubits)},
					{"T-count", FormatCount(r.TCount)},
					{"Rotation count", FormatCount(r.RotationCount)},
				},
			},
			{
				Title: "Error budget",
				Rows: []Row{
					{"Logical error budget", FormatRate(r.ErrorBudgetLogical)},
					{"T-state error budget", FormatRate(r.ErrorBudgetTStates)},
					{"Rotation error budget", FormatRate(r.ErrorBudgetRotations)},
				},
			},
		},
	}
}
