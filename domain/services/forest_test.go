package services

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/valueobjects"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type shape struct {
	ID       int64
	Children []shape
}

func shapeOf(forest []*OperationNode) []shape {
	out := make([]shape, 0, len(forest))
	for _, n := range forest {
		out = append(out, shape{ID: n.ID, Children: shapeOf(n.Children)})
	}
	return out
}

func parent(id int64) *int64 { return &id }

func op(id int64, parentID *int64) entities.Operation {
	return entities.Operation{
		ID:          id,
		Type:        valueobjects.OperationAdd,
		RightNumber: 1,
		TreeID:      1,
		ParentID:    parentID,
	}
}

func TestBuildForest(t *testing.T) {
	tests := []struct {
		name  string
		input []entities.Operation
		want  []shape
	}{
		{
			name:  "nil input",
			input: nil,
			want:  []shape{},
		},
		{
			name:  "empty input",
			input: []entities.Operation{},
			want:  []shape{},
		},
		{
			name:  "single root",
			input: []entities.Operation{op(1, nil)},
			want:  []shape{{ID: 1, Children: []shape{}}},
		},
		{
			name: "roots keep input order",
			input: []entities.Operation{
				op(3, nil), op(1, nil), op(2, nil),
			},
			want: []shape{
				{ID: 3, Children: []shape{}},
				{ID: 1, Children: []shape{}},
				{ID: 2, Children: []shape{}},
			},
		},
		{
			name: "siblings keep input order",
			input: []entities.Operation{
				op(1, nil), op(4, parent(1)), op(2, parent(1)), op(3, parent(1)),
			},
			want: []shape{
				{ID: 1, Children: []shape{
					{ID: 4, Children: []shape{}},
					{ID: 2, Children: []shape{}},
					{ID: 3, Children: []shape{}},
				}},
			},
		},
		{
			name: "child listed before its parent",
			input: []entities.Operation{
				op(3, parent(2)), op(2, parent(1)), op(1, nil),
			},
			want: []shape{
				{ID: 1, Children: []shape{
					{ID: 2, Children: []shape{
						{ID: 3, Children: []shape{}},
					}},
				}},
			},
		},
		{
			name: "dangling parent drops the subtree",
			input: []entities.Operation{
				op(1, nil), op(2, parent(99)), op(3, parent(2)),
			},
			want: []shape{{ID: 1, Children: []shape{}}},
		},
		{
			name: "self parent is excluded",
			input: []entities.Operation{
				op(1, nil), op(2, parent(2)),
			},
			want: []shape{{ID: 1, Children: []shape{}}},
		},
		{
			name: "cycle is excluded",
			input: []entities.Operation{
				op(1, parent(2)), op(2, parent(1)), op(3, nil),
			},
			want: []shape{{ID: 3, Children: []shape{}}},
		},
		{
			name: "first duplicate wins",
			input: []entities.Operation{
				op(1, nil), op(2, parent(1)), op(2, nil),
			},
			want: []shape{
				{ID: 1, Children: []shape{
					{ID: 2, Children: []shape{}},
				}},
			},
		},
		{
			name: "zero is an ordinary id",
			input: []entities.Operation{
				op(0, nil), op(1, parent(0)),
			},
			want: []shape{
				{ID: 0, Children: []shape{
					{ID: 1, Children: []shape{}},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildForest(tt.input)
			require.NotNil(t, got)
			if diff := cmp.Diff(tt.want, shapeOf(got)); diff != "" {
				t.Errorf("BuildForest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildForest_EveryReachableNodeOnce(t *testing.T) {
	input := []entities.Operation{
		op(1, nil),
		op(2, parent(1)),
		op(3, parent(1)),
		op(4, parent(2)),
		op(5, nil),
		op(6, parent(5)),
		op(7, parent(42)),
	}

	forest := BuildForest(input)

	seen := map[int64]int{}
	Walk(forest, func(n *OperationNode, _ int) bool {
		seen[n.ID]++
		return true
	})

	assert.Equal(t, 6, CountNodes(forest))
	for id, count := range seen {
		assert.Equalf(t, 1, count, "operation %d visited %d times", id, count)
	}
	assert.NotContains(t, seen, int64(7))
}

func TestBuildForest_PreservesOperationFields(t *testing.T) {
	input := []entities.Operation{
		{ID: 1, Type: valueobjects.OperationAdd, RightNumber: 3, Result: 8, TreeID: 7, UserID: 2},
		{ID: 2, Type: valueobjects.OperationMultiply, RightNumber: 2, Result: 16, TreeID: 7, UserID: 2, ParentID: parent(1)},
	}

	forest := BuildForest(input)

	require.Len(t, forest, 1)
	root := forest[0]
	assert.Equal(t, valueobjects.OperationAdd, root.Type)
	assert.Equal(t, 8.0, root.Result)
	require.Len(t, root.Children, 1)
	child := root.Children[0]
	assert.Equal(t, valueobjects.OperationMultiply, child.Type)
	assert.Equal(t, 16.0, child.Result)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, int64(1), *child.ParentID)
}

func TestBuildForest_JSON(t *testing.T) {
	empty, err := json.Marshal(BuildForest(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(empty))

	data, err := json.Marshal(BuildForest([]entities.Operation{op(1, nil)}))
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, float64(1), decoded[0]["id"])
	assert.Equal(t, "ADD", decoded[0]["type"])
	assert.Nil(t, decoded[0]["parentId"])
	assert.Equal(t, []interface{}{}, decoded[0]["children"])
}

func TestWalk_StopsEarly(t *testing.T) {
	forest := BuildForest([]entities.Operation{op(1, nil), op(2, parent(1)), op(3, nil)})

	var visited []int64
	Walk(forest, func(n *OperationNode, _ int) bool {
		visited = append(visited, n.ID)
		return n.ID != 2
	})

	assert.Equal(t, []int64{1, 2}, visited)
}
