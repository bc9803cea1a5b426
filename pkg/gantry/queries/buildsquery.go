/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

import (
	"encoding/json"
	"net/url"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/common"
	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
)

// BuildSummary is one row of the Builds query output.
type BuildSummary struct {
	JobName          string `json:"jobName"`
	BuildId          string `json:"buildId"`
	Title            string `json:"title"`
	BuildStartTimeMs int64  `json:"buildStartTimeMs"`
	BuildEndTimeMs   int64  `json:"buildEndTimeMs"`
	DurationMs       int64  `json:"durationMs"`
}

// BuildsQuery lists matching builds without their node trees, for the build
// picker in the UI.
func BuildsQuery(params url.Values, tables typed.Tables, colorToId map[string]int, startTime time.Time, endTime time.Time, requestId string) ([]byte, error) {
	builds, err := rangeReadBuilds(params, tables, startTime, endTime, requestId)
	if err != nil {
		return []byte{}, err
	}

	summaries := []BuildSummary{}
	for _, build := range builds {
		summaries = append(summaries, BuildSummary{
			JobName:          build.JobName,
			BuildId:          build.BuildId,
			Title:            build.Title,
			BuildStartTimeMs: build.BuildStartTimeMs,
			BuildEndTimeMs:   build.BuildEndTimeMs,
			DurationMs:       build.BuildEndTimeMs - build.BuildStartTimeMs,
		})
	}
	sortKey := params.Get(SortParam)
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch sortKey {
		case SortByDuration:
			// Slowest builds first, that's what you came to look at
			if a.DurationMs != b.DurationMs {
				return a.DurationMs > b.DurationMs
			}
		case SortByName:
			if a.JobName != b.JobName {
				return a.JobName < b.JobName
			}
		}
		if a.BuildStartTimeMs != b.BuildStartTimeMs {
			return a.BuildStartTimeMs < b.BuildStartTimeMs
		}
		if a.JobName != b.JobName {
			return a.JobName < b.JobName
		}
		return a.BuildId < b.BuildId
	})

	bytes, err := json.MarshalIndent(summaries, "", " ")
	if err != nil {
		return []byte{}, errors.Wrap(err, "failed to marshal builds")
	}
	return bytes, nil
}

// PipelineQuery lists the distinct pipeline names with data in range.
func PipelineQuery(params url.Values, tables typed.Tables, colorToId map[string]int, startTime time.Time, endTime time.Time, requestId string) ([]byte, error) {
	builds, err := rangeReadBuilds(params, tables, startTime, endTime, requestId)
	if err != nil {
		return []byte{}, err
	}

	pipelines := []string{}
	for _, build := range builds {
		if !common.Contains(pipelines, build.JobName) {
			pipelines = append(pipelines, build.JobName)
		}
	}
	sort.Strings(pipelines)
	pipelines = append(pipelines, AllPipelines)

	bytes, err := json.MarshalIndent(pipelines, "", " ")
	if err != nil {
		return []byte{}, errors.Wrap(err, "failed to marshal pipelines")
	}
	return bytes, nil
}

func QueryAvailableQueries(params url.Values, tables typed.Tables, colorToId map[string]int, startTime time.Time, endTime time.Time, requestId string) ([]byte, error) {
	bytes, err := json.MarshalIndent(GetNamesOfQueries(), "", " ")
	if err != nil {
		return []byte{}, errors.Wrap(err, "failed to marshal query names")
	}
	return bytes, nil
}
