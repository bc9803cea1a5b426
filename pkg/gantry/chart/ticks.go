/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package chart

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// Tick intervals are whole multiples of one minute so the axis labels
	// stay readable.
	tickBaseIntervalMs = 60000
	maxTickMarks       = 20
)

// TickPlan is the chosen axis label spacing for one chart.  NumTicks stays
// real valued: a fractional tail tick is expected and the axis draws a final
// partial slot for it.
type TickPlan struct {
	NumTicks       float64 `json:"numTicks"`
	TickIntervalMs int64   `json:"tickIntervalMs"`
	TickGapPct     float64 `json:"tickGapPct"`
}

// PlanTicks picks the smallest whole-minute tick interval that keeps the tick
// count at or under maxTickMarks.  This is a linear search rather than a
// closed-form divide because the interval must land on a minute boundary, and
// the search verifies the ceiling implicitly at each step.
func PlanTicks(durationMs int64) (TickPlan, error) {
	if durationMs <= 0 {
		return TickPlan{}, errors.Wrapf(ErrInvalidDuration, "durationMs=%v", durationMs)
	}

	tickIntervalMs := int64(tickBaseIntervalMs)
	numTicks := float64(durationMs) / float64(tickIntervalMs)
	for numTicks > maxTickMarks {
		tickIntervalMs += tickBaseIntervalMs
		numTicks = float64(durationMs) / float64(tickIntervalMs)
	}

	return TickPlan{
		NumTicks:       numTicks,
		TickIntervalMs: tickIntervalMs,
		TickGapPct:     100 / numTicks,
	}, nil
}

// MinuteLabels returns one label per tick slot, including the fractional tail
// slot, as elapsed minutes rounded to the nearest whole minute.
func (p TickPlan) MinuteLabels() []int {
	labels := []int{}
	for i := 0; float64(i) < p.NumTicks; i++ {
		minutes := float64(i) * float64(p.TickIntervalMs) / float64(tickBaseIntervalMs)
		labels = append(labels, int(math.Round(minutes)))
	}
	return labels
}
