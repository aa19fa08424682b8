package targets

import "sort"

// Preset qubit model names. These mirror the models published by the
// estimation service: gate-based superconducting (ns) and trapped-ion (us)
// regimes at two fidelity levels, plus two Majorana models.
const (
	QubitGateNsE3 = "qubit_gate_ns_e3"
	QubitGateNsE4 = "qubit_gate_ns_e4"
	QubitGateUsE3 = "qubit_gate_us_e3"
	QubitGateUsE4 = "qubit_gate_us_e4"
	QubitMajNsE4  = "qubit_maj_ns_e4"
	QubitMajNsE6  = "qubit_maj_ns_e6"
)

// QEC scheme names.
const (
	QECSurfaceCode = "surface_code"
	QECFloquetCode = "floquet_code"
)

// DefaultErrorBudget is used when a request doesn't specify one.
const DefaultErrorBudget = 1e-3

var qubitPresets = map[string]QubitParams{
	QubitGateNsE3: {
		Name:               QubitGateNsE3,
		InstructionSet:     InstructionSetGateBased,
		OneQubitGateTimeNs: 50,
		TwoQubitGateTimeNs: 50,
		OneQubitGateError:  1e-3,
		TwoQubitGateError:  1e-3,
		TGateTimeNs:        50,
		TGateError:         1e-3,
		MeasurementTimeNs:  100,
		MeasurementError:   1e-3,
	},
	QubitGateNsE4: {
		Name:               QubitGateNsE4,
		InstructionSet:     InstructionSetGateBased,
		OneQubitGateTimeNs: 50,
		TwoQubitGateTimeNs: 50,
		OneQubitGateError:  1e-4,
		TwoQubitGateError:  1e-4,
		TGateTimeNs:        50,
		TGateError:         1e-4,
		MeasurementTimeNs:  100,
		MeasurementError:   1e-4,
	},
	QubitGateUsE3: {
		Name:               QubitGateUsE3,
		InstructionSet:     InstructionSetGateBased,
		OneQubitGateTimeNs: 100_000,
		TwoQubitGateTimeNs: 100_000,
		OneQubitGateError:  1e-3,
		TwoQubitGateError:  1e-3,
		TGateTimeNs:        100_000,
		TGateError:         1e-6,
		MeasurementTimeNs:  100_000,
		MeasurementError:   1e-3,
	},
	QubitGateUsE4: {
		Name:               QubitGateUsE4,
		InstructionSet:     InstructionSetGateBased,
		OneQubitGateTimeNs: 100_000,
		TwoQubitGateTimeNs: 100_000,
		OneQubitGateError:  1e-4,
		TwoQubitGateError:  1e-4,
		TGateTimeNs:        100_000,
		TGateError:         1e-6,
		MeasurementTimeNs:  100_000,
		MeasurementError:   1e-4,
	},
	QubitMajNsE4: {
		Name:               QubitMajNsE4,
		InstructionSet:     InstructionSetMajorana,
		OneQubitGateTimeNs: 100,
		TwoQubitGateTimeNs: 100,
		OneQubitGateError:  1e-4,
		TwoQubitGateError:  1e-4,
		TGateTimeNs:        100,
		TGateError:         0.05,
		MeasurementTimeNs:  100,
		MeasurementError:   1e-4,
		IdleError:          1e-4,
	},
	QubitMajNsE6: {
		Name:               QubitMajNsE6,
		InstructionSet:     InstructionSetMajorana,
		OneQubitGateTimeNs: 100,
		TwoQubitGateTimeNs: 100,
		OneQubitGateError:  1e-6,
		TwoQubitGateError:  1e-6,
		TGateTimeNs:        100,
		TGateError:         0.01,
		MeasurementTimeNs:  100,
		MeasurementError:   1e-6,
		IdleError:          1e-6,
	},
}

var qecPresets = map[string]QECScheme{
	QECSurfaceCode: {
		Name:                     QECSurfaceCode,
		ErrorCorrectionThreshold: 0.01,
		CrossingPrefactor:        0.03,
		LogicalCycleTime:         "(4 * twoQubitGateTime + 2 * oneQubitMeasurementTime) * codeDistance",
		PhysicalQubitsPerLogical: "2 * codeDistance * codeDistance",
	},
	QECFloquetCode: {
		Name:                     QECFloquetCode,
		ErrorCorrectionThreshold: 0.01,
		CrossingPrefactor:        0.07,
		LogicalCycleTime:         "3 * oneQubitMeasurementTime * codeDistance",
		PhysicalQubitsPerLogical: "4 * codeDistance * codeDistance + 8 * (codeDistance - 1)",
	},
}

// defaultQEC maps an instruction set to its natural QEC scheme.
// Floquet codes are only defined for Majorana hardware.
func defaultQEC(instructionSet string) QECScheme {
	if instructionSet == InstructionSetMajorana {
		return qecPresets[QECFloquetCode]
	}
	return qecPresets[QECSurfaceCode]
}

// QubitPreset looks up a predefined qubit model by name.
func QubitPreset(name string) (QubitParams, bool) {
	p, ok := qubitPresets[name]
	return p, ok
}

// QECPreset looks up a predefined error correction scheme by name.
func QECPreset(name string) (QECScheme, bool) {
	s, ok := qecPresets[name]
	return s, ok
}

// PresetNames returns all qubit preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(qubitPresets))
	for name := range qubitPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProfile builds a complete profile from a qubit preset name, with
// the instruction set's default QEC scheme and a uniform error budget.
func DefaultProfile(qubitName string) (TargetProfile, bool) {
	qubit, ok := qubitPresets[qubitName]
	if !ok {
		return TargetProfile{}, false
	}

	return TargetProfile{
		Qubit:  qubit,
		QEC:    defaultQEC(qubit.InstructionSet),
		Budget: ErrorBudget{Total: DefaultErrorBudget},
	}, true
}
