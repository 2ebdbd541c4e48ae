package services

import (
	"numtree-backend/domain/core/valueobjects"
	pkgerrors "numtree-backend/pkg/errors"
)

// Evaluate applies t to left and right using IEEE-754 double arithmetic.
func Evaluate(left, right float64, t valueobjects.OperationType) (float64, error) {
	switch t {
	case valueobjects.OperationAdd:
		return left + right, nil
	case valueobjects.OperationSubtract:
		return left - right, nil
	case valueobjects.OperationMultiply:
		return left * right, nil
	case valueobjects.OperationDivide:
		if right == 0 {
			return 0, pkgerrors.DivisionByZero()
		}
		return left / right, nil
	default:
		return 0, pkgerrors.InvalidOperationType(string(t))
	}
}
