// Package targets defines the hardware target profiles submitted with every
// estimation job: qubit parameter models, error correction schemes, and
// error budgets. The remote service does the actual physical-resource math;
// this package owns presets, validation, and merging of user overrides.
package targets

// Instruction set names accepted by the estimation service.
const (
	InstructionSetGateBased = "GateBased"
	InstructionSetMajorana  = "Majorana"
)

// QubitParams describes a physical qubit model. All times are nanoseconds,
// all error rates are probabilities in (0, 1).
type QubitParams struct {
	Name           string `json:"name"`
	InstructionSet string `json:"instruction_set"`

	OneQubitGateTimeNs float64 `json:"one_qubit_gate_time_ns"`
	TwoQubitGateTimeNs float64 `json:"two_qubit_gate_time_ns"`
	OneQubitGateError  float64 `json:"one_qubit_gate_error"`
	TwoQubitGateError  float64 `json:"two_qubit_gate_error"`

	TGateTimeNs float64 `json:"t_gate_time_ns"`
	TGateError  float64 `json:"t_gate_error"`

	MeasurementTimeNs float64 `json:"measurement_time_ns"`
	MeasurementError  float64 `json:"measurement_error"`

	// IdleError only applies to Majorana qubit models.
	IdleError float64 `json:"idle_error,omitempty"`
}

// QECScheme describes an error correction code family. The formula strings
// are evaluated by the remote service; we validate presence and forward them.
type QECScheme struct {
	Name                     string  `json:"name"`
	ErrorCorrectionThreshold float64 `json:"error_correction_threshold"`
	CrossingPrefactor        float64 `json:"crossing_prefactor"`
	LogicalCycleTime         string  `json:"logical_cycle_time"`
	PhysicalQubitsPerLogical string  `json:"physical_qubits_per_logical"`
}

// ErrorBudget partitions the total acceptable error across the three
// consumers the service models: logical errors, T state distillation, and
// rotation synthesis. A budget with only Total set is split evenly.
type ErrorBudget struct {
	Total     float64 `json:"total"`
	Logical   float64 `json:"logical,omitempty"`
	TStates   float64 `json:"t_states,omitempty"`
	Rotations float64 `json:"rotations,omitempty"`
}

// IsUniform reports whether the budget only specifies a total to be split.
func (b ErrorBudget) IsUniform() bool {
	return b.Logical == 0 && b.TStates == 0 && b.Rotations == 0
}

// Partition returns the per-component budgets, splitting a uniform budget
// into equal thirds.
func (b ErrorBudget) Partition() (logical, tStates, rotations float64) {
	if b.IsUniform() {
		third := b.Total / 3
		return third, third, third
	}
	return b.Logical, b.TStates, b.Rotations
}

// Constraints are optional knobs forwarded to the service to steer the
// space/time trade-off of an estimate.
type Constraints struct {
	LogicalDepthFactor float64 `json:"logical_depth_factor,omitempty"`
	MaxTFactories      int     `json:"max_t_factories,omitempty"`
	MaxDurationNs      float64 `json:"max_duration_ns,omitempty"`
}

// TargetProfile is the full hardware configuration submitted with a job.
type TargetProfile struct {
	Qubit       QubitParams  `json:"qubit"`
	QEC         QECScheme    `json:"qec"`
	Budget      ErrorBudget  `json:"error_budget"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// Name returns the profile's display name (the qubit model name).
func (p TargetProfile) Name() string {
	return p.Qubit.Name
}
