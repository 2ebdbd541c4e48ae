package valueobjects

import (
	"encoding/json"
	"strings"
)

// OperationType is the arithmetic applied by an operation
type OperationType string

const (
	OperationAdd      OperationType = "ADD"
	OperationSubtract OperationType = "SUBTRACT"
	OperationMultiply OperationType = "MULTIPLY"
	OperationDivide   OperationType = "DIVIDE"
)

// OperationTypes lists the supported types in declaration order
var OperationTypes = []OperationType{
	OperationAdd,
	OperationSubtract,
	OperationMultiply,
	OperationDivide,
}

// IsValid reports whether t is one of the supported types.
// Matching is exact: "add" is not ADD.
func (t OperationType) IsValid() bool {
	switch t {
	case OperationAdd, OperationSubtract, OperationMultiply, OperationDivide:
		return true
	}
	return false
}

// String returns the wire representation
func (t OperationType) String() string {
	return string(t)
}

// Symbol returns the infix operator for display
func (t OperationType) Symbol() string {
	switch t {
	case OperationAdd:
		return "+"
	case OperationSubtract:
		return "-"
	case OperationMultiply:
		return "*"
	case OperationDivide:
		return "/"
	}
	return "?"
}

// UnmarshalJSON accepts any string. Unknown values are rejected by the
// evaluator so the caller gets InvalidOperationType rather than a decode error.
func (t *OperationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = OperationType(strings.TrimSpace(s))
	return nil
}
