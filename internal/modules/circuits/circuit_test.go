package circuits

import (
	"encoding/base64"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuit_BuilderRecordsGates(t *testing.T) {
	c := NewCircuit("test", 2)
	c.H(0).CNOT(0, 1).Rz(math.Pi/4, 1).Measure(0).Measure(1)

	require.NoError(t, c.Err())
	assert.Len(t, c.Gates, 5)
	assert.Equal(t, GateH, c.Gates[0].Kind)
	assert.Equal(t, []int{0, 1}, c.Gates[1].Qubits)
}

func TestCircuit_ErrorsStick(t *testing.T) {
	c := NewCircuit("test", 2)
	c.Rx(1.0, 5) // Out of range
	c.H(0)       // Should be ignored after the error

	assert.Error(t, c.Err())
	assert.Empty(t, c.Gates)
}

func TestCircuit_InvalidOperands(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Circuit)
	}{
		{"negative qubit", func(c *Circuit) { c.H(-1) }},
		{"qubit out of range", func(c *Circuit) { c.Rz(0.5, 3) }},
		{"duplicate two-qubit operands", func(c *Circuit) { c.CNOT(1, 1) }},
		{"nan angle", func(c *Circuit) { c.Rx(math.NaN(), 0) }},
		{"infinite angle", func(c *Circuit) { c.Rzz(math.Inf(1), 0, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCircuit("test", 3)
			tt.build(c)
			assert.Error(t, c.Err())
		})
	}
}

func TestNewCircuit_RejectsEmptyRegister(t *testing.T) {
	c := NewCircuit("empty", 0)
	assert.Error(t, c.Err())
}

func TestCircuit_Layers(t *testing.T) {
	c := NewCircuit("layered", 2)
	c.BeginLayer()
	c.H(0).H(1)
	c.EndLayer()
	c.BeginLayer()
	c.CNOT(0, 1)
	c.EndLayer()

	require.NoError(t, c.Err())
	assert.Equal(t, 2, c.LayerCount())
	assert.Equal(t, []int{2, 1}, c.Layers)
}

func TestCircuit_EmptyLayerIsError(t *testing.T) {
	c := NewCircuit("layered", 2)
	c.BeginLayer()
	c.EndLayer()

	assert.Error(t, c.Err())
}

func TestCircuit_Summarize(t *testing.T) {
	c := NewCircuit("summary", 2)
	c.H(0).H(1).CNOT(0, 1)

	s := c.Summarize()
	assert.Equal(t, "summary", s.Name)
	assert.Equal(t, 2, s.Qubits)
	assert.Equal(t, 3, s.TotalGates)
	assert.Equal(t, 2, s.ByKind[GateH])
	assert.Equal(t, 1, s.ByKind[GateCNOT])
}

func TestCircuitPayload(t *testing.T) {
	c := NewCircuit("p", 2)
	c.H(0)

	p, err := CircuitPayload(c)
	require.NoError(t, err)
	assert.Equal(t, PayloadKindCircuit, p.Kind)
	assert.NoError(t, p.Validate())
}

func TestCircuitPayload_RejectsEmptyAndBroken(t *testing.T) {
	_, err := CircuitPayload(nil)
	assert.Error(t, err)

	empty := NewCircuit("empty", 1)
	_, err = CircuitPayload(empty)
	assert.Error(t, err)

	broken := NewCircuit("broken", 1)
	broken.H(9)
	_, err = CircuitPayload(broken)
	assert.Error(t, err)
}

func TestBitcodePayload(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte("BC\xc0\xde fake bitcode"))

	p, err := BitcodePayload(b64)
	require.NoError(t, err)
	assert.Equal(t, PayloadKindBitcode, p.Kind)
	assert.NoError(t, p.Validate())
}

func TestBitcodePayload_RejectsInvalid(t *testing.T) {
	_, err := BitcodePayload("")
	assert.Error(t, err)

	_, err = BitcodePayload("not-valid-base64!!!")
	assert.Error(t, err)
}

func TestPayload_ValidateUnknownKind(t *testing.T) {
	p := Payload{Kind: "qasm"}
	assert.Error(t, p.Validate())
}
