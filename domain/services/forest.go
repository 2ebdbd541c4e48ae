package services

import (
	"numtree-backend/domain/core/entities"
)

// OperationNode is an operation with its child operations attached in
// input order.
type OperationNode struct {
	entities.Operation
	Children []*OperationNode `json:"children"`
}

// BuildForest nests a flat, parent-referencing list of operations.
//
// Roots are the operations without a parent. An operation whose parent is
// not in the list is dropped along with its subtree, and so is anything
// caught in a parent cycle. When an id repeats, the first occurrence wins.
// Roots and siblings keep their relative input order. The result is never
// nil.
func BuildForest(operations []entities.Operation) []*OperationNode {
	roots := make([]*OperationNode, 0)
	if len(operations) == 0 {
		return roots
	}

	// Index every node before attaching anything so a child may precede
	// its parent in the input.
	nodes := make([]OperationNode, len(operations))
	byID := make(map[int64]*OperationNode, len(operations))
	for i := range operations {
		if _, seen := byID[operations[i].ID]; seen {
			continue
		}
		nodes[i] = OperationNode{Operation: operations[i], Children: make([]*OperationNode, 0)}
		byID[operations[i].ID] = &nodes[i]
	}

	for i := range operations {
		node := byID[operations[i].ID]
		if node != &nodes[i] {
			continue
		}
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*node.ParentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}

// Walk visits every node of the forest depth-first, parents before children.
// Returning false from fn stops the walk.
func Walk(forest []*OperationNode, fn func(node *OperationNode, depth int) bool) {
	var visit func(nodes []*OperationNode, depth int) bool
	visit = func(nodes []*OperationNode, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if !visit(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	visit(forest, 0)
}

// CountNodes returns the number of operations reachable from the roots
func CountNodes(forest []*OperationNode) int {
	count := 0
	Walk(forest, func(*OperationNode, int) bool {
		count++
		return true
	})
	return count
}
