/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

// Package model holds the task document schema shared by ingress, the store,
// and the chart layout engine.  Field names follow the JSON contract emitted
// by the ingestion side, so a stored document round-trips unchanged.
package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// The modes a node can be in during an interval.  Ingress assigns these while
// coalescing pipeline steps; the chart engine treats them as opaque labels.
const (
	ModeRunning          = "RUNNING"
	ModeSleeping         = "Sleeping"          // sleep()
	ModeWaiting          = "Waiting"           // waitUntil() or prompt()
	ModeAwaitingExecutor = "Awaiting executor" // waiting for a new worker machine
	ModeNotRunning       = "[not running]"
	ModeNotStarted       = "[build not started]"
)

// Interval is a single colored timing segment within a node's lifetime.
type Interval struct {
	StartTimeMs                   int64  `json:"startTimeMs"`
	EndTimeMs                     int64  `json:"endTimeMs"`
	Mode                          string `json:"mode"`
	ColorId                       int    `json:"colorId"`
	TimeRangeRelativeToBuildStart string `json:"timeRangeRelativeToBuildStart"`
}

// Node is one stage, parallel branch, or build root.  Child order is
// meaningful: the chart renders children depth-first in this order.
type Node struct {
	Name      string     `json:"name"`
	Intervals []Interval `json:"intervals"`
	Children  []*Node    `json:"children"`
}

// BuildData is everything we keep for a single pipeline build.
type BuildData struct {
	JobName          string            `json:"jobName"`
	BuildId          string            `json:"buildId"`
	Title            string            `json:"title"`
	Parameters       map[string]string `json:"parameters"` // not used for rendering; kept for debugging
	BuildStartTimeMs int64             `json:"buildStartTimeMs"`
	BuildEndTimeMs   int64             `json:"buildEndTimeMs"`
	NodeRoot         *Node             `json:"nodeRoot"`
}

// TaskData is the full input document for one render: a collection of related
// builds run in concert (for example all of the builds in one deploy).
type TaskData struct {
	Title           string         `json:"title"`
	Subtitle        string         `json:"subtitle"`
	ColorToId       map[string]int `json:"colorToId"`
	TaskStartTimeMs int64          `json:"taskStartTimeMs"`
	TaskEndTimeMs   int64          `json:"taskEndTimeMs"`
	Builds          []BuildData    `json:"builds"`
}

func (d *TaskData) Validate() error {
	if d.TaskEndTimeMs <= d.TaskStartTimeMs {
		return errors.Errorf("task end time %v must be after start time %v", d.TaskEndTimeMs, d.TaskStartTimeMs)
	}
	seen := map[int]string{}
	for color, id := range d.ColorToId {
		if other, ok := seen[id]; ok {
			return errors.Errorf("color id %v assigned to both %q and %q", id, color, other)
		}
		seen[id] = color
	}
	for i := range d.Builds {
		if d.Builds[i].NodeRoot == nil {
			return errors.Errorf("build %v:%v has no node root", d.Builds[i].JobName, d.Builds[i].BuildId)
		}
	}
	return nil
}

func (b *BuildData) ToJson() ([]byte, error) {
	out, err := json.Marshal(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal build %v:%v", b.JobName, b.BuildId)
	}
	return out, nil
}

func BuildFromJson(data []byte) (*BuildData, error) {
	ret := &BuildData{}
	err := json.Unmarshal(data, ret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal build document")
	}
	return ret, nil
}
