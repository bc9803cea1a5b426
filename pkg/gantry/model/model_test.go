/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func helper_validTask() *TaskData {
	return &TaskData{
		Title:           "deploy",
		ColorToId:       map[string]int{"#000000": 0, "#00008b": 1},
		TaskStartTimeMs: 1000,
		TaskEndTimeMs:   2000,
		Builds: []BuildData{
			{JobName: "deploy", BuildId: "1", NodeRoot: &Node{Name: "<deploy:1>"}},
		},
	}
}

func Test_TaskData_Validate_Passes(t *testing.T) {
	assert.Nil(t, helper_validTask().Validate())
}

func Test_TaskData_Validate_RejectsInvertedWindow(t *testing.T) {
	task := helper_validTask()
	task.TaskEndTimeMs = task.TaskStartTimeMs
	assert.NotNil(t, task.Validate())
}

func Test_TaskData_Validate_RejectsDuplicateColorIds(t *testing.T) {
	task := helper_validTask()
	task.ColorToId["#8b0000"] = 1
	assert.NotNil(t, task.Validate())
}

func Test_TaskData_Validate_RejectsMissingNodeRoot(t *testing.T) {
	task := helper_validTask()
	task.Builds[0].NodeRoot = nil
	assert.NotNil(t, task.Validate())
}

func Test_BuildData_JsonRoundTrip(t *testing.T) {
	build := BuildData{
		JobName:          "deploy",
		BuildId:          "1543",
		Title:            "znd-test",
		Parameters:       map[string]string{"REVISION_DESCRIPTION": "znd-test"},
		BuildStartTimeMs: 1500000000000,
		BuildEndTimeMs:   1500000600000,
		NodeRoot: &Node{
			Name: "<deploy:1543>",
			Intervals: []Interval{
				{StartTimeMs: 1500000000000, EndTimeMs: 1500000600000, Mode: ModeRunning, ColorId: 1,
					TimeRangeRelativeToBuildStart: "2017/07/14:02:40:00 - 02:50:00 (600.00s)"},
			},
			Children: []*Node{{Name: "main", Intervals: []Interval{{Mode: ModeNotRunning, ColorId: 0}}}},
		},
	}

	data, err := build.ToJson()
	assert.Nil(t, err)
	back, err := BuildFromJson(data)
	assert.Nil(t, err)
	assert.Equal(t, &build, back)
}

func Test_BuildFromJson_RejectsGarbage(t *testing.T) {
	_, err := BuildFromJson([]byte("not json"))
	assert.NotNil(t, err)
}
