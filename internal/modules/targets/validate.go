package targets

import (
	"fmt"
	"math"
)

// Validate checks a full target profile before submission.
func (p TargetProfile) Validate() error {
	if err := p.Qubit.Validate(); err != nil {
		return fmt.Errorf("qubit params: %w", err)
	}
	if err := p.QEC.Validate(); err != nil {
		return fmt.Errorf("qec scheme: %w", err)
	}
	if err := p.Budget.Validate(); err != nil {
		return fmt.Errorf("error budget: %w", err)
	}
	if p.Constraints != nil {
		if err := p.Constraints.Validate(); err != nil {
			return fmt.Errorf("constraints: %w", err)
		}
	}
	return nil
}

// Validate checks a qubit model for physically meaningful values.
func (q QubitParams) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch q.InstructionSet {
	case InstructionSetGateBased, InstructionSetMajorana:
	default:
		return fmt.Errorf("unknown instruction set: %q", q.InstructionSet)
	}

	times := map[string]float64{
		"one_qubit_gate_time_ns": q.OneQubitGateTimeNs,
		"two_qubit_gate_time_ns": q.TwoQubitGateTimeNs,
		"t_gate_time_ns":         q.TGateTimeNs,
		"measurement_time_ns":    q.MeasurementTimeNs,
	}
	for field, t := range times {
		if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%s must be positive, got %v", field, t)
		}
	}

	rates := map[string]float64{
		"one_qubit_gate_error": q.OneQubitGateError,
		"two_qubit_gate_error": q.TwoQubitGateError,
		"t_gate_error":         q.TGateError,
		"measurement_error":    q.MeasurementError,
	}
	for field, r := range rates {
		if r <= 0 || r >= 1 {
			return fmt.Errorf("%s must be in (0, 1), got %v", field, r)
		}
	}

	if q.InstructionSet == InstructionSetMajorana {
		if q.IdleError <= 0 || q.IdleError >= 1 {
			return fmt.Errorf("idle_error must be in (0, 1) for Majorana models, got %v", q.IdleError)
		}
	} else if q.IdleError != 0 {
		return fmt.Errorf("idle_error only applies to Majorana models")
	}

	return nil
}

// Validate checks a QEC scheme. The formula strings are evaluated remotely;
// we only require them to be present.
func (s QECScheme) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.ErrorCorrectionThreshold <= 0 || s.ErrorCorrectionThreshold >= 1 {
		return fmt.Errorf("error_correction_threshold must be in (0, 1), got %v", s.ErrorCorrectionThreshold)
	}
	if s.CrossingPrefactor <= 0 {
		return fmt.Errorf("crossing_prefactor must be positive, got %v", s.CrossingPrefactor)
	}
	if s.LogicalCycleTime == "" {
		return fmt.Errorf("logical_cycle_time formula is required")
	}
	if s.PhysicalQubitsPerLogical == "" {
		return fmt.Errorf("physical_qubits_per_logical formula is required")
	}
	return nil
}

// Validate checks an error budget. Either only Total is set (uniform split)
// or all three components are set and sum to Total.
func (b ErrorBudget) Validate() error {
	if b.Total <= 0 || b.Total >= 1 {
		return fmt.Errorf("total must be in (0, 1), got %v", b.Total)
	}

	if b.IsUniform() {
		return nil
	}

	for field, v := range map[string]float64{
		"logical":   b.Logical,
		"t_states":  b.TStates,
		"rotations": b.Rotations,
	} {
		if v <= 0 || v >= 1 {
			return fmt.Errorf("%s must be in (0, 1), got %v", field, v)
		}
	}

	sum := b.Logical + b.TStates + b.Rotations
	// Tolerate float rounding from JSON round-trips.
	if math.Abs(sum-b.Total) > 1e-12 {
		return fmt.Errorf("partition sums to %v, expected total %v", sum, b.Total)
	}

	return nil
}

// Validate checks optional constraints.
func (c Constraints) Validate() error {
	if c.LogicalDepthFactor < 0 {
		return fmt.Errorf("logical_depth_factor must be non-negative, got %v", c.LogicalDepthFactor)
	}
	if c.MaxTFactories < 0 {
		return fmt.Errorf("max_t_factories must be non-negative, got %d", c.MaxTFactories)
	}
	if c.MaxDurationNs < 0 {
		return fmt.Errorf("max_duration_ns must be non-negative, got %v", c.MaxDurationNs)
	}
	return nil
}

// Overrides carries optional user-supplied replacements for individual
// preset fields. Zero values mean "keep the preset value".
type Overrides struct {
	OneQubitGateTimeNs float64 `json:"one_qubit_gate_time_ns,omitempty"`
	TwoQubitGateTimeNs float64 `json:"two_qubit_gate_time_ns,omitempty"`
	OneQubitGateError  float64 `json:"one_qubit_gate_error,omitempty"`
	TwoQubitGateError  float64 `json:"two_qubit_gate_error,omitempty"`
	TGateTimeNs        float64 `json:"t_gate_time_ns,omitempty"`
	TGateError         float64 `json:"t_gate_error,omitempty"`
	MeasurementTimeNs  float64 `json:"measurement_time_ns,omitempty"`
	MeasurementError   float64 `json:"measurement_error,omitempty"`
	IdleError          float64 `json:"idle_error,omitempty"`
}

// Merge applies overrides onto a preset qubit model. Fields left at zero in
// the overrides keep the preset values, so overriding a single gate error
// does not disturb the rest of the model.
func Merge(preset QubitParams, o Overrides) QubitParams {
	merged := preset

	if o.OneQubitGateTimeNs != 0 {
		merged.OneQubitGateTimeNs = o.OneQubitGateTimeNs
	}
	if o.TwoQubitGateTimeNs != 0 {
		merged.TwoQubitGateTimeNs = o.TwoQubitGateTimeNs
	}
	if o.OneQubitGateError != 0 {
		merged.OneQubitGateError = o.OneQubitGateError
	}
	if o.TwoQubitGateError != 0 {
		merged.TwoQubitGateError = o.TwoQubitGateError
	}
	if o.TGateTimeNs != 0 {
		merged.TGateTimeNs = o.TGateTimeNs
	}
	if o.TGateError != 0 {
		merged.TGateError = o.TGateError
	}
	if o.MeasurementTimeNs != 0 {
		merged.MeasurementTimeNs = o.MeasurementTimeNs
	}
	if o.MeasurementError != 0 {
		merged.MeasurementError = o.MeasurementError
	}
	if o.IdleError != 0 {
		merged.IdleError = o.IdleError
	}

	return merged
}
