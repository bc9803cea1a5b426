/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package ingress

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// A build node is what the chart eventually shows one row for: a stage or a
// parallel branch.  Many steps coalesce into one node, contributing the time
// ranges the node was running, sleeping or waiting.

type timeRange struct {
	startMs int64
	endMs   int64
	mode    string
}

// BuildNode is the intermediate, mode-annotated form of a chart row.
type BuildNode struct {
	Name     string
	Children []*BuildNode
	ranges   []timeRange
}

func (n *BuildNode) child(name string) *BuildNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &BuildNode{Name: name}
	n.Children = append(n.Children, c)
	return c
}

func (n *BuildNode) addRange(startMs int64, endMs int64, mode string) {
	n.ranges = append(n.ranges, timeRange{startMs: startMs, endMs: endMs, mode: mode})
}

func stepMode(s *Step) string {
	switch {
	case s.IsWaiting:
		return model.ModeWaiting
	case s.IsSleeping:
		return model.ModeSleeping
	default:
		return model.ModeRunning
	}
}

// Walk the step tree and hang each step's time range off the node it belongs
// to, creating child nodes whenever a step starts a new name.
func addStep(node *BuildNode, s *Step) {
	if s.HasNewName() {
		node = node.child(s.Name)
	}
	node.addRange(s.StartTimeMs, s.StartTimeMs+s.ElapsedTimeMs, stepMode(s))
	if s.IsNewWorker && len(s.Children) > 0 {
		// An allocate-node step has one child, the begin-node step.  The
		// gap between their starts is time spent waiting for an executor
		// to come up.
		node.addRange(s.StartTimeMs, s.Children[0].StartTimeMs, model.ModeAwaitingExecutor)
	}
	for _, child := range s.Children {
		addStep(node, child)
	}
}

// StepsToNodes coalesces a step tree into the per-stage node tree, with each
// node's time ranges normalized into a flat, gap-free interval list.
func StepsToNodes(root *Step) *BuildNode {
	top := &BuildNode{Name: root.Name}
	top.addRange(root.StartTimeMs, root.StartTimeMs+root.ElapsedTimeMs, stepMode(root))
	for _, child := range root.Children {
		addStep(top, child)
	}
	// Sort before normalizing: normalization back-fills a leading
	// "[not running]" range from time 0, which would erase the real
	// start order.
	sortTree(top)
	normalizeTree(top)
	return top
}

func normalizeTree(node *BuildNode) {
	node.ranges = normalizeTimeRanges(node.ranges)
	for _, child := range node.Children {
		normalizeTree(child)
	}
}

// The raw ranges off a node overlap freely: a block step covers its whole
// body including nested sleeps and waits.  Normalizing produces disjoint,
// adjacent ranges covering [0, end of node), with inner modes punching holes
// in outer ones and gaps filled with "[not running]".
//
// Relies on ranges nesting (a later-starting range ends no later than the
// range it sits inside), which holds for step trees.
func normalizeTimeRanges(ranges []timeRange) []timeRange {
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].startMs != ranges[j].startMs {
			return ranges[i].startMs < ranges[j].startMs
		}
		return ranges[i].endMs > ranges[j].endMs
	})

	normalized := []timeRange{}
	for _, r := range ranges {
		var largestEnd int64
		if len(normalized) > 0 {
			largestEnd = normalized[len(normalized)-1].endMs
		}
		if r.startMs >= largestEnd {
			// Past everything seen so far.  Fill the gap (also the
			// leading gap from the build start at time 0).
			normalized = appendNonEmpty(normalized, timeRange{largestEnd, r.startMs, model.ModeNotRunning})
			normalized = appendNonEmpty(normalized, r)
			continue
		}
		// Nested inside the enclosing range: split it around us.
		i := len(normalized) - 1
		for normalized[i].startMs > r.startMs {
			i--
		}
		outer := normalized[i]
		split := []timeRange{}
		split = appendNonEmpty(split, timeRange{outer.startMs, r.startMs, outer.mode})
		split = appendNonEmpty(split, r)
		split = appendNonEmpty(split, timeRange{r.endMs, outer.endMs, outer.mode})
		normalized = append(normalized[:i], append(split, normalized[i+1:]...)...)
	}

	// Merge adjacent ranges with the same mode
	merged := []timeRange{}
	for _, r := range normalized {
		if len(merged) > 0 && merged[len(merged)-1].mode == r.mode {
			merged[len(merged)-1].endMs = r.endMs
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}

func appendNonEmpty(ranges []timeRange, r timeRange) []timeRange {
	if r.startMs >= r.endMs {
		return ranges
	}
	return append(ranges, r)
}

// Children sort by start time, then by name with numeric dash-separated
// segments compared as numbers, so "shard-2" comes before "shard-10".
func sortTree(node *BuildNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		return nodeLess(node.Children[i], node.Children[j])
	})
	for _, child := range node.Children {
		sortTree(child)
	}
}

func nodeLess(a *BuildNode, b *BuildNode) bool {
	if a.firstStart() != b.firstStart() {
		return a.firstStart() < b.firstStart()
	}
	return nameLess(a.Name, b.Name)
}

func (n *BuildNode) firstStart() int64 {
	if len(n.ranges) == 0 {
		return 0
	}
	return n.ranges[0].startMs
}

func nameLess(a string, b string) bool {
	aParts := strings.Split(a, "-")
	bParts := strings.Split(b, "-")
	for i := 0; i < len(aParts) && i < len(bParts); i++ {
		if aParts[i] == bParts[i] {
			continue
		}
		aNum, aErr := strconv.Atoi(aParts[i])
		bNum, bErr := strconv.Atoi(bParts[i])
		if aErr == nil && bErr == nil {
			return aNum < bNum
		}
		return aParts[i] < bParts[i]
	}
	return len(aParts) < len(bParts)
}
