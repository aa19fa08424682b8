package circuits

import (
	"encoding/base64"
	"fmt"
)

// Payload kinds accepted by the estimation service.
const (
	PayloadKindCircuit = "circuit"
	PayloadKindBitcode = "bitcode"
)

// Payload is the program half of a job request: either an inline circuit
// built with this package's DSL, or pre-compiled QIR bitcode passed through
// opaquely as base64.
type Payload struct {
	Kind    string   `json:"kind"`
	Circuit *Circuit `json:"circuit,omitempty"`
	Bitcode string   `json:"bitcode,omitempty"` // base64-encoded QIR bitcode
}

// CircuitPayload wraps a circuit for submission.
func CircuitPayload(c *Circuit) (Payload, error) {
	if c == nil {
		return Payload{}, fmt.Errorf("circuit is nil")
	}
	if err := c.Err(); err != nil {
		return Payload{}, fmt.Errorf("circuit has build errors: %w", err)
	}
	if len(c.Gates) == 0 {
		return Payload{}, fmt.Errorf("circuit %q is empty", c.Name)
	}

	return Payload{Kind: PayloadKindCircuit, Circuit: c}, nil
}

// BitcodePayload wraps pre-compiled QIR bitcode. The content is not
// inspected beyond base64 validity; compilation is out of scope here.
func BitcodePayload(b64 string) (Payload, error) {
	if b64 == "" {
		return Payload{}, fmt.Errorf("bitcode is empty")
	}
	if _, err := base64.StdEncoding.DecodeString(b64); err != nil {
		return Payload{}, fmt.Errorf("bitcode is not valid base64: %w", err)
	}

	return Payload{Kind: PayloadKindBitcode, Bitcode: b64}, nil
}

// Validate checks payload shape invariants.
func (p Payload) Validate() error {
	switch p.Kind {
	case PayloadKindCircuit:
		if p.Circuit == nil {
			return fmt.Errorf("circuit payload has no circuit")
		}
		if err := p.Circuit.Err(); err != nil {
			return err
		}
		if len(p.Circuit.Gates) == 0 {
			return fmt.Errorf("circuit payload is empty")
		}
	case PayloadKindBitcode:
		if p.Bitcode == "" {
			return fmt.Errorf("bitcode payload is empty")
		}
		if _, err := base64.StdEncoding.DecodeString(p.Bitcode); err != nil {
			return fmt.Errorf("bitcode is not valid base64: %w", err)
		}
	default:
		return fmt.Errorf("unknown payload kind: %q", p.Kind)
	}
	return nil
}
