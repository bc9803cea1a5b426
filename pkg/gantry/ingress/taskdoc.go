/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package ingress

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// AssembleTask groups a set of build documents into one task document, the
// unit the chart renders.  Builds are ordered by start time; the task spans
// from the earliest build start to the latest build end.
func AssembleTask(builds []model.BuildData, colorToId map[string]int, title string) (model.TaskData, error) {
	if len(builds) == 0 {
		return model.TaskData{}, errors.New("task has no builds")
	}

	sorted := make([]model.BuildData, len(builds))
	copy(sorted, builds)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BuildStartTimeMs != sorted[j].BuildStartTimeMs {
			return sorted[i].BuildStartTimeMs < sorted[j].BuildStartTimeMs
		}
		if sorted[i].JobName != sorted[j].JobName {
			return sorted[i].JobName < sorted[j].JobName
		}
		return sorted[i].BuildId < sorted[j].BuildId
	})

	taskStart := sorted[0].BuildStartTimeMs
	taskEnd := sorted[0].BuildEndTimeMs
	for _, b := range sorted {
		if b.BuildEndTimeMs > taskEnd {
			taskEnd = b.BuildEndTimeMs
		}
	}

	if title == "" {
		title = strings.Join(distinctTitles(sorted), " / ")
	}

	task := model.TaskData{
		Title:           title,
		Subtitle:        time.UnixMilli(taskStart).UTC().Format("2006/01/02 15:04:05"),
		ColorToId:       colorToId,
		TaskStartTimeMs: taskStart,
		TaskEndTimeMs:   taskEnd,
		Builds:          sorted,
	}
	if err := task.Validate(); err != nil {
		return model.TaskData{}, errors.Wrap(err, "assembled an invalid task")
	}
	return task, nil
}

func distinctTitles(builds []model.BuildData) []string {
	seen := map[string]bool{}
	titles := []string{}
	for _, b := range builds {
		if !seen[b.Title] {
			seen[b.Title] = true
			titles = append(titles, b.Title)
		}
	}
	sort.Strings(titles)
	return titles
}
