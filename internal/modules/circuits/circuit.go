// Package circuits provides a small quantum circuit DSL and the
// Trotter-Suzuki construction for 2D transverse-field Ising time evolution.
// Circuits built here are serialized into estimation job payloads; nothing
// in this package executes or simulates them.
package circuits

import (
	"fmt"
	"math"
)

// GateKind identifies a gate in the DSL.
type GateKind string

const (
	GateRx      GateKind = "rx"
	GateRz      GateKind = "rz"
	GateRzz     GateKind = "rzz"
	GateH       GateKind = "h"
	GateCNOT    GateKind = "cnot"
	GateT       GateKind = "t"
	GateMeasure GateKind = "mz"
)

// arity returns the number of qubit operands a gate kind takes.
func (k GateKind) arity() int {
	switch k {
	case GateRzz, GateCNOT:
		return 2
	default:
		return 1
	}
}

// rotational reports whether the gate carries an angle parameter.
func (k GateKind) rotational() bool {
	switch k {
	case GateRx, GateRz, GateRzz:
		return true
	default:
		return false
	}
}

// Gate is a single operation on one or two qubits.
type Gate struct {
	Kind   GateKind `json:"kind"`
	Qubits []int    `json:"qubits"`
	Angle  float64  `json:"angle,omitempty"`
}

// Circuit is an ordered gate sequence over a fixed qubit register.
// Layers records layer boundaries for constructions that emit gates in
// commuting groups (one entry per layer, value = gate count in that layer).
type Circuit struct {
	Name   string `json:"name"`
	Qubits int    `json:"qubits"`
	Gates  []Gate `json:"gates"`
	Layers []int  `json:"layers,omitempty"`

	err error // First builder error, surfaced by Err()
}

// NewCircuit creates an empty circuit over the given register size.
func NewCircuit(name string, qubits int) *Circuit {
	c := &Circuit{Name: name, Qubits: qubits}
	if qubits <= 0 {
		c.err = fmt.Errorf("circuit %q: qubit count must be positive, got %d", name, qubits)
	}
	return c
}

// Err returns the first error recorded while building the circuit.
// Builder methods are chainable and record rather than return errors.
func (c *Circuit) Err() error {
	return c.err
}

// append validates operands and records a gate.
func (c *Circuit) append(kind GateKind, angle float64, qubits ...int) *Circuit {
	if c.err != nil {
		return c
	}

	if len(qubits) != kind.arity() {
		c.err = fmt.Errorf("circuit %q: %s takes %d qubits, got %d", c.Name, kind, kind.arity(), len(qubits))
		return c
	}

	for _, q := range qubits {
		if q < 0 || q >= c.Qubits {
			c.err = fmt.Errorf("circuit %q: qubit index %d out of range [0, %d)", c.Name, q, c.Qubits)
			return c
		}
	}

	if len(qubits) == 2 && qubits[0] == qubits[1] {
		c.err = fmt.Errorf("circuit %q: %s operands must be distinct, got qubit %d twice", c.Name, kind, qubits[0])
		return c
	}

	if kind.rotational() && (math.IsNaN(angle) || math.IsInf(angle, 0)) {
		c.err = fmt.Errorf("circuit %q: %s angle must be finite", c.Name, kind)
		return c
	}

	c.Gates = append(c.Gates, Gate{Kind: kind, Qubits: qubits, Angle: angle})
	return c
}

// Rx appends a single-qubit X rotation.
func (c *Circuit) Rx(angle float64, qubit int) *Circuit {
	return c.append(GateRx, angle, qubit)
}

// Rz appends a single-qubit Z rotation.
func (c *Circuit) Rz(angle float64, qubit int) *Circuit {
	return c.append(GateRz, angle, qubit)
}

// Rzz appends a two-qubit ZZ rotation.
func (c *Circuit) Rzz(angle float64, a, b int) *Circuit {
	return c.append(GateRzz, angle, a, b)
}

// H appends a Hadamard gate.
func (c *Circuit) H(qubit int) *Circuit {
	return c.append(GateH, 0, qubit)
}

// CNOT appends a controlled-NOT gate.
func (c *Circuit) CNOT(control, target int) *Circuit {
	return c.append(GateCNOT, 0, control, target)
}

// T appends a T gate.
func (c *Circuit) T(qubit int) *Circuit {
	return c.append(GateT, 0, qubit)
}

// Measure appends a Z-basis measurement.
func (c *Circuit) Measure(qubit int) *Circuit {
	return c.append(GateMeasure, 0, qubit)
}

// BeginLayer marks the start of a new commuting layer. Gates appended after
// this call count toward the new layer. Empty layers are rejected at Close.
func (c *Circuit) BeginLayer() *Circuit {
	if c.err != nil {
		return c
	}
	// Open marker encodes the gate offset as -(offset+1) so that a layer
	// opened at offset zero is still negative.
	c.Layers = append(c.Layers, -(len(c.Gates) + 1))
	return c
}

// EndLayer finalizes the most recent layer marker with its gate count.
func (c *Circuit) EndLayer() *Circuit {
	if c.err != nil || len(c.Layers) == 0 {
		return c
	}

	last := len(c.Layers) - 1
	if c.Layers[last] >= 0 {
		return c // Already closed
	}

	start := -c.Layers[last] - 1
	count := len(c.Gates) - start
	if count == 0 {
		c.err = fmt.Errorf("circuit %q: empty layer", c.Name)
		return c
	}
	c.Layers[last] = count
	return c
}

// LayerCount returns the number of closed layers.
func (c *Circuit) LayerCount() int {
	return len(c.Layers)
}

// GateCounts returns the number of gates per kind.
func (c *Circuit) GateCounts() map[GateKind]int {
	counts := make(map[GateKind]int)
	for _, g := range c.Gates {
		counts[g.Kind]++
	}
	return counts
}

// Depth-free summary used by handlers and logs.
type Summary struct {
	Name       string           `json:"name"`
	Qubits     int              `json:"qubits"`
	TotalGates int              `json:"total_gates"`
	Layers     int              `json:"layers"`
	ByKind     map[GateKind]int `json:"by_kind"`
}

// Summarize returns a compact description of the circuit.
func (c *Circuit) Summarize() Summary {
	return Summary{
		Name:       c.Name,
		Qubits:     c.Qubits,
		TotalGates: len(c.Gates),
		Layers:     c.LayerCount(),
		ByKind:     c.GateCounts(),
	}
}
