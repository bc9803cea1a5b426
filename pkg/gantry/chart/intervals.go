/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package chart

import (
	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// Segment is one interval converted to a percentage of the chart width.
// Zero width segments are kept: they still carry their mode and tooltip for
// hover inspection of the underlying data.  No minimum width is applied, so
// very short intervals may be invisible but are never dropped.
type Segment struct {
	WidthPct    float64 `json:"widthPct"`
	ColorId     int     `json:"colorId"`
	Mode        string  `json:"mode"`
	TimeRange   string  `json:"timeRange"`
	StartTimeMs int64   `json:"startTimeMs"`
	EndTimeMs   int64   `json:"endTimeMs"`
}

// normalizeIntervals prepends the synthetic "[build not started]" interval
// spanning from the chart's global start to the node's first interval, then
// converts every interval's span to a percentage of the total task time.
// The synthetic lead-in keeps every row aligned on a shared x axis no matter
// when the underlying build actually started.  No trailing gap is synthesized
// when a node's last interval ends before the task does; an in-progress build
// simply stops short.
func normalizeIntervals(intervals []model.Interval, taskStartTimeMs int64, taskTimeMs int64, known map[int]bool) ([]Segment, error) {
	if len(intervals) == 0 {
		return nil, errors.WithStack(ErrEmptyIntervalList)
	}
	if taskTimeMs <= 0 {
		return nil, errors.Wrapf(ErrInvalidDuration, "taskTimeMs=%v", taskTimeMs)
	}

	all := make([]model.Interval, 0, len(intervals)+1)
	all = append(all, model.Interval{
		StartTimeMs: taskStartTimeMs,
		EndTimeMs:   intervals[0].StartTimeMs,
		Mode:        model.ModeNotStarted,
		ColorId:     TransparentColorId,
	})
	all = append(all, intervals...)

	segments := make([]Segment, 0, len(all))
	for _, interval := range all {
		if !known[interval.ColorId] {
			return nil, errors.Wrapf(ErrMalformedColorId, "colorId=%v mode=%q", interval.ColorId, interval.Mode)
		}
		spanMs := interval.EndTimeMs - interval.StartTimeMs
		segments = append(segments, Segment{
			WidthPct:    float64(spanMs) * 100 / float64(taskTimeMs),
			ColorId:     interval.ColorId,
			Mode:        interval.Mode,
			TimeRange:   interval.TimeRangeRelativeToBuildStart,
			StartTimeMs: interval.StartTimeMs,
			EndTimeMs:   interval.EndTimeMs,
		})
	}
	return segments, nil
}
