/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

func helper_node(name string, children ...*model.Node) *model.Node {
	return &model.Node{Name: name, Children: children}
}

func Test_Flatten_EmptyForest(t *testing.T) {
	assert.Equal(t, 0, len(Flatten(nil)))
}

func Test_Flatten_PreOrderAcrossMultipleRoots(t *testing.T) {
	roots := []*model.Node{
		helper_node("build-a",
			helper_node("stage-1",
				helper_node("branch-x"),
				helper_node("branch-y")),
			helper_node("stage-2")),
		helper_node("build-b"),
	}

	flat := Flatten(roots)
	names := []string{}
	for _, fn := range flat {
		names = append(names, fn.Node.Name)
	}
	assert.Equal(t, []string{"build-a", "stage-1", "branch-x", "branch-y", "stage-2", "build-b"}, names)
}

func Test_Flatten_IdsAreDenseAndOrdered(t *testing.T) {
	roots := []*model.Node{
		helper_node("root", helper_node("a", helper_node("b")), helper_node("c")),
	}
	flat := Flatten(roots)
	assert.Equal(t, 4, len(flat))
	for i, fn := range flat {
		assert.Equal(t, i, fn.Id)
	}
}

func Test_Flatten_ParentIdsChain(t *testing.T) {
	roots := []*model.Node{
		helper_node("root", helper_node("a", helper_node("b")), helper_node("c")),
		helper_node("other"),
	}
	flat := Flatten(roots)
	assert.Equal(t, []int{}, flat[0].ParentIds)
	assert.Equal(t, []int{0}, flat[1].ParentIds)
	assert.Equal(t, []int{0, 1}, flat[2].ParentIds)
	assert.Equal(t, []int{0}, flat[3].ParentIds)
	assert.Equal(t, []int{}, flat[4].ParentIds)
}

func Test_Flatten_ParentAlwaysBeforeChild(t *testing.T) {
	roots := []*model.Node{
		helper_node("root",
			helper_node("a", helper_node("b"), helper_node("c")),
			helper_node("d", helper_node("e"))),
	}
	for _, fn := range Flatten(roots) {
		for _, parentId := range fn.ParentIds {
			assert.True(t, parentId < fn.Id, "row %v has parent %v", fn.Id, parentId)
		}
	}
}

func Test_Flatten_HasChildrenComputedLocally(t *testing.T) {
	roots := []*model.Node{helper_node("root", helper_node("leaf"))}
	flat := Flatten(roots)
	assert.True(t, flat[0].HasChildren)
	assert.False(t, flat[1].HasChildren)
}

func Test_Flatten_SiblingSubtreesDoNotShareParentIdSlices(t *testing.T) {
	roots := []*model.Node{
		helper_node("root",
			helper_node("a", helper_node("a1")),
			helper_node("b", helper_node("b1"))),
	}
	flat := Flatten(roots)
	// a1 is row 2 under [0 1], b1 is row 4 under [0 3]
	assert.Equal(t, []int{0, 1}, flat[2].ParentIds)
	assert.Equal(t, []int{0, 3}, flat[4].ParentIds)
}
