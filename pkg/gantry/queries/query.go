/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/golang/glog"

	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
)

// Takes in arguments from the web page, runs the query, and returns json
type buildJsonQuery = func(params url.Values, tables typed.Tables, colorToId map[string]int, startTime time.Time, endTime time.Time, requestId string) ([]byte, error)

var funcMap map[string]buildJsonQuery

func init() {
	funcMap = map[string]buildJsonQuery{
		"ChartLayout": ChartLayoutQuery,
		"Pipelines":   PipelineQuery,
		"Builds":      BuildsQuery,
		"Queries":     QueryAvailableQueries,
	}
}

func Default() string {
	return "ChartLayout"
}

func GetNamesOfQueries() []string {
	names := []string{}
	for name := range funcMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func RunQuery(queryName string, params url.Values, tables typed.Tables, colorToId map[string]int, maxLookBack time.Duration, requestId string) ([]byte, error) {
	startTime, endTime := computeTimeRange(params, tables, maxLookBack)

	fn, ok := funcMap[queryName]
	if !ok {
		return []byte{}, fmt.Errorf("query not found: %v", queryName)
	}
	ret, err := fn(params, tables, colorToId, startTime, endTime, requestId)
	if err != nil {
		glog.Errorf("Query %v failed with error: %v", queryName, err)
	}
	return ret, err
}
