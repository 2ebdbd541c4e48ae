package services

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numtree-backend/domain/core/valueobjects"
	pkgerrors "numtree-backend/pkg/errors"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		left  float64
		right float64
		op    valueobjects.OperationType
		want  float64
	}{
		{"add", 5, 3, valueobjects.OperationAdd, 8},
		{"subtract", 5, 3, valueobjects.OperationSubtract, 2},
		{"multiply", 5, 3, valueobjects.OperationMultiply, 15},
		{"divide", 6, 3, valueobjects.OperationDivide, 2},
		{"divide fractional", 1, 4, valueobjects.OperationDivide, 0.25},
		{"subtract to negative", 2, 5, valueobjects.OperationSubtract, -3},
		{"multiply by zero", 7, 0, valueobjects.OperationMultiply, 0},
		{"zero divided", 0, 5, valueobjects.OperationDivide, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.left, tt.right, tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_FloatingPoint(t *testing.T) {
	got, err := Evaluate(0.1, 0.2, valueobjects.OperationAdd)
	require.NoError(t, err)
	assert.Equal(t, 0.1+0.2, got)
	assert.NotEqual(t, 0.3, got)
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	for _, right := range []float64{0, math.Copysign(0, -1)} {
		_, err := Evaluate(10, right, valueobjects.OperationDivide)
		require.Error(t, err)
		assert.True(t, errors.Is(err, pkgerrors.ErrDivisionByZero))

		appErr := pkgerrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)
		assert.Equal(t, "Division by zero", appErr.Message)
	}
}

func TestEvaluate_InvalidOperationType(t *testing.T) {
	for _, op := range []valueobjects.OperationType{"MODULO", "add", ""} {
		_, err := Evaluate(1, 2, op)
		require.Errorf(t, err, "type %q", op)
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidOperationType))
		assert.False(t, errors.Is(err, pkgerrors.ErrDivisionByZero))
	}
}

func TestEvaluate_Chained(t *testing.T) {
	first, err := Evaluate(5, 3, valueobjects.OperationAdd)
	require.NoError(t, err)
	second, err := Evaluate(first, 2, valueobjects.OperationMultiply)
	require.NoError(t, err)

	assert.Equal(t, 8.0, first)
	assert.Equal(t, 16.0, second)
}
