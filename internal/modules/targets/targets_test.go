package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_AllValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			profile, ok := DefaultProfile(name)
			require.True(t, ok)
			assert.NoError(t, profile.Validate())
			assert.Equal(t, name, profile.Name())
		})
	}
}

func TestDefaultProfile_UnknownName(t *testing.T) {
	_, ok := DefaultProfile("qubit_photonic_e9")
	assert.False(t, ok)
}

func TestDefaultProfile_QECMatchesInstructionSet(t *testing.T) {
	gateBased, ok := DefaultProfile(QubitGateNsE3)
	require.True(t, ok)
	assert.Equal(t, QECSurfaceCode, gateBased.QEC.Name)

	majorana, ok := DefaultProfile(QubitMajNsE6)
	require.True(t, ok)
	assert.Equal(t, QECFloquetCode, majorana.QEC.Name)
}

func TestQubitParams_Validate(t *testing.T) {
	base, _ := QubitPreset(QubitGateNsE3)

	tests := []struct {
		name    string
		mutate  func(*QubitParams)
		wantErr bool
	}{
		{"valid preset", func(q *QubitParams) {}, false},
		{"missing name", func(q *QubitParams) { q.Name = "" }, true},
		{"unknown instruction set", func(q *QubitParams) { q.InstructionSet = "Analog" }, true},
		{"zero gate time", func(q *QubitParams) { q.TwoQubitGateTimeNs = 0 }, true},
		{"negative gate time", func(q *QubitParams) { q.OneQubitGateTimeNs = -50 }, true},
		{"error rate of zero", func(q *QubitParams) { q.TGateError = 0 }, true},
		{"error rate of one", func(q *QubitParams) { q.MeasurementError = 1 }, true},
		{"idle error on gate-based model", func(q *QubitParams) { q.IdleError = 1e-4 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQubitParams_MajoranaRequiresIdleError(t *testing.T) {
	q, _ := QubitPreset(QubitMajNsE4)
	q.IdleError = 0
	assert.Error(t, q.Validate())
}

func TestQECScheme_Validate(t *testing.T) {
	base, _ := QECPreset(QECSurfaceCode)
	assert.NoError(t, base.Validate())

	noFormula := base
	noFormula.LogicalCycleTime = ""
	assert.Error(t, noFormula.Validate())

	badThreshold := base
	badThreshold.ErrorCorrectionThreshold = 1.5
	assert.Error(t, badThreshold.Validate())
}

func TestErrorBudget_UniformPartition(t *testing.T) {
	b := ErrorBudget{Total: 0.003}
	require.True(t, b.IsUniform())
	require.NoError(t, b.Validate())

	logical, tStates, rotations := b.Partition()
	assert.InDelta(t, 0.001, logical, 1e-12)
	assert.InDelta(t, 0.001, tStates, 1e-12)
	assert.InDelta(t, 0.001, rotations, 1e-12)
}

func TestErrorBudget_ExplicitPartition(t *testing.T) {
	b := ErrorBudget{Total: 0.001, Logical: 0.0005, TStates: 0.0003, Rotations: 0.0002}
	require.False(t, b.IsUniform())
	require.NoError(t, b.Validate())

	logical, tStates, rotations := b.Partition()
	assert.Equal(t, 0.0005, logical)
	assert.Equal(t, 0.0003, tStates)
	assert.Equal(t, 0.0002, rotations)
}

func TestErrorBudget_Validate(t *testing.T) {
	assert.Error(t, ErrorBudget{Total: 0}.Validate())
	assert.Error(t, ErrorBudget{Total: 1}.Validate())

	// Components must sum to total
	mismatched := ErrorBudget{Total: 0.001, Logical: 0.0009, TStates: 0.0009, Rotations: 0.0009}
	assert.Error(t, mismatched.Validate())
}

func TestMerge_KeepsUnsetFields(t *testing.T) {
	preset, _ := QubitPreset(QubitGateNsE3)

	merged := Merge(preset, Overrides{TwoQubitGateError: 5e-4})

	assert.Equal(t, 5e-4, merged.TwoQubitGateError)
	assert.Equal(t, preset.OneQubitGateError, merged.OneQubitGateError)
	assert.Equal(t, preset.TwoQubitGateTimeNs, merged.TwoQubitGateTimeNs)
	assert.Equal(t, preset.Name, merged.Name)
}

func TestMerge_EmptyOverridesIsIdentity(t *testing.T) {
	preset, _ := QubitPreset(QubitMajNsE6)
	assert.Equal(t, preset, Merge(preset, Overrides{}))
}

func TestConstraints_Validate(t *testing.T) {
	assert.NoError(t, Constraints{}.Validate())
	assert.NoError(t, Constraints{LogicalDepthFactor: 2, MaxTFactories: 10}.Validate())
	assert.Error(t, Constraints{MaxTFactories: -1}.Validate())
	assert.Error(t, Constraints{MaxDurationNs: -5}.Validate())
}
