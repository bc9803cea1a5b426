/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package ingress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

func helper_someBuildDoc(jobName string, buildId string, title string, startMs int64, endMs int64) model.BuildData {
	return model.BuildData{
		JobName:          jobName,
		BuildId:          buildId,
		Title:            title,
		BuildStartTimeMs: startMs,
		BuildEndTimeMs:   endMs,
		NodeRoot:         &model.Node{Name: "<" + jobName + ":" + buildId + ">"},
	}
}

func Test_AssembleTask_SpansAllBuilds(t *testing.T) {
	builds := []model.BuildData{
		helper_someBuildDoc("deploy", "2", "228", 1546398300000, 1546398400000),
		helper_someBuildDoc("smoke", "9", "smoke", 1546398245000, 1546398340000),
	}
	doc, err := AssembleTask(builds, map[string]int{"#000000": 0}, "deploy 228")
	assert.Nil(t, err)

	assert.Equal(t, "deploy 228", doc.Title)
	assert.Equal(t, int64(1546398245000), doc.TaskStartTimeMs)
	assert.Equal(t, int64(1546398400000), doc.TaskEndTimeMs)
	assert.Equal(t, "2019/01/02 03:04:05", doc.Subtitle)

	// Builds come out ordered by start time
	assert.Equal(t, "smoke", doc.Builds[0].JobName)
	assert.Equal(t, "deploy", doc.Builds[1].JobName)

	assert.Nil(t, doc.Validate())
}

func Test_AssembleTask_DefaultTitleJoinsDistinctBuildTitles(t *testing.T) {
	builds := []model.BuildData{
		helper_someBuildDoc("deploy", "2", "228", 1546398300000, 1546398400000),
		helper_someBuildDoc("deploy", "3", "228", 1546398350000, 1546398420000),
		helper_someBuildDoc("smoke", "9", "smoke", 1546398245000, 1546398340000),
	}
	doc, err := AssembleTask(builds, nil, "")
	assert.Nil(t, err)
	assert.Equal(t, "228 / smoke", doc.Title)
}

func Test_AssembleTask_NoBuildsFails(t *testing.T) {
	_, err := AssembleTask(nil, nil, "anything")
	assert.NotNil(t, err)
}

func Test_AssembleTask_RejectsBuildWithoutNodeTree(t *testing.T) {
	build := helper_someBuildDoc("deploy", "2", "228", 1546398300000, 1546398400000)
	build.NodeRoot = nil
	_, err := AssembleTask([]model.BuildData{build}, nil, "")
	assert.NotNil(t, err)
}

func Test_AssembleTask_RejectsDuplicateColorIds(t *testing.T) {
	builds := []model.BuildData{
		helper_someBuildDoc("deploy", "2", "228", 1546398300000, 1546398400000),
	}
	_, err := AssembleTask(builds, map[string]int{"#000000": 0, "#ffffff": 0}, "")
	assert.NotNil(t, err)
}

func Test_AssembleTask_DoesNotMutateInput(t *testing.T) {
	builds := []model.BuildData{
		helper_someBuildDoc("deploy", "2", "228", 1546398300000, 1546398400000),
		helper_someBuildDoc("smoke", "9", "smoke", 1546398245000, 1546398340000),
	}
	_, err := AssembleTask(builds, nil, "")
	assert.Nil(t, err)
	assert.Equal(t, "deploy", builds[0].JobName)
}
