/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

// Parameters are shared between webserver and here
// Keep this in sync with pkg/gantry/webfiles/filter.js
const (
	LookbackParam  = "lookback"
	PipelineParam  = "pipeline"
	BuildIdParam   = "buildid"
	NameMatchParam = "namematch" // substring match on pipeline name
	TitleParam     = "title"     // overrides the task title
	FilterParam    = "filter"    // jsonlogic rule evaluated against each build document
	StartDateParam = "start_date"
	EndDateParam   = "end_date"
	QueryParam     = "query"
	SortParam      = "sort"
)

// Values accepted by SortParam on the Builds query.  Anything else falls
// back to sorting by start time.
const (
	SortByStart    = "start"
	SortByDuration = "duration"
	SortByName     = "name"
)

const (
	AllPipelines = "_all"
)
