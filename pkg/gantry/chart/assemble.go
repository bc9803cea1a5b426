/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

// Package chart converts a task document into a renderable timeline layout:
// one proportionally scaled stacked bar per pipeline node, collapse toggles
// for nodes with children, and an adaptive minute axis.  The layout is an
// immutable value; the display collaborator owns turning it into markup, a
// canvas draw list, or a terminal chart.
package chart

import (
	"html"

	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// NoCollapseId marks rows without children, which get no collapse toggle.
const NoCollapseId = -1

// Row is one renderable chart row.  HideGroups lists every ancestor id whose
// collapse toggle hides this row; visibility is a pure presentation concern
// layered on top, the row list itself never shrinks.
type Row struct {
	Label      string    `json:"label"`
	Indent     int       `json:"indent"`
	CollapseId int       `json:"collapseId"`
	HideGroups []int     `json:"hideGroups"`
	Segments   []Segment `json:"segments"`
}

// Layout is the full render output for one task document.
type Layout struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Rows        []Row    `json:"rows"`
	Ticks       TickPlan `json:"ticks"`
	TickLabels  []int    `json:"tickLabels"`
	ColorStyles []Style  `json:"colorStyles"`
}

// Assemble runs one full render pass.  It is a pure function of the input
// document: no state is carried between calls, so concurrent renders of
// distinct documents are fully independent.
func Assemble(doc *model.TaskData) (*Layout, error) {
	taskTimeMs := doc.TaskEndTimeMs - doc.TaskStartTimeMs
	ticks, err := PlanTicks(taskTimeMs)
	if err != nil {
		return nil, err
	}

	styles := ResolveColors(doc.ColorToId)
	known := knownColorIds(doc.ColorToId)

	roots := make([]*model.Node, 0, len(doc.Builds))
	for i := range doc.Builds {
		roots = append(roots, doc.Builds[i].NodeRoot)
	}

	flat := Flatten(roots)
	rows := make([]Row, 0, len(flat))
	for _, fn := range flat {
		segments, err := normalizeIntervals(fn.Node.Intervals, doc.TaskStartTimeMs, taskTimeMs, known)
		if err != nil {
			return nil, errors.Wrapf(err, "node %q (row %v)", fn.Node.Name, fn.Id)
		}
		for i := range segments {
			segments[i].Mode = escapeText(segments[i].Mode)
			segments[i].TimeRange = escapeText(segments[i].TimeRange)
		}

		collapseId := NoCollapseId
		if fn.HasChildren {
			collapseId = fn.Id
		}
		rows = append(rows, Row{
			Label:      escapeText(fn.Node.Name),
			Indent:     len(fn.ParentIds) + 1,
			CollapseId: collapseId,
			HideGroups: fn.ParentIds,
			Segments:   segments,
		})
	}

	return &Layout{
		Title:       escapeText(doc.Title),
		Subtitle:    escapeText(doc.Subtitle),
		Rows:        rows,
		Ticks:       ticks,
		TickLabels:  ticks.MinuteLabels(),
		ColorStyles: styles,
	}, nil
}

// Build/job/stage names come from untrusted pipeline definitions, so every
// user supplied string is escaped for & < > " ' before it can reach any
// markup-like output.
func escapeText(text string) string {
	return html.EscapeString(text)
}
