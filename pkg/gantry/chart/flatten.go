/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package chart

import "github.com/gantryviz/gantry/pkg/gantry/model"

// FlattenedNode is a Node annotated with its row id and ancestor chain.  Ids
// are assigned in depth-first pre-order starting at 0, so the id doubles as
// the row index in the rendered chart.
type FlattenedNode struct {
	Id          int
	ParentIds   []int
	HasChildren bool
	Node        *model.Node
}

// Flatten walks the root trees in order and returns one entry per node.
// Parents always precede their descendants and sibling subtrees are
// contiguous, so the result is the literal row order of the chart.  The input
// must be a forest: cycles are a caller contract violation.
func Flatten(roots []*model.Node) []FlattenedNode {
	flat := []FlattenedNode{}
	for _, root := range roots {
		flat = flattenInto(flat, root, nil)
	}
	return flat
}

func flattenInto(flat []FlattenedNode, node *model.Node, ancestors []int) []FlattenedNode {
	id := len(flat)
	parentIds := make([]int, len(ancestors))
	copy(parentIds, ancestors)
	flat = append(flat, FlattenedNode{
		Id:          id,
		ParentIds:   parentIds,
		HasChildren: len(node.Children) > 0,
		Node:        node,
	})

	childAncestors := append(parentIds, id)
	for _, child := range node.Children {
		flat = flattenInto(flat, child, childAncestors)
	}
	return flat
}
