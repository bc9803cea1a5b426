/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

import (
	"net/url"
	"strings"

	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
)

func paramFilterBuildDocFn(params url.Values) func(string) bool {
	selectedPipeline := params.Get(PipelineParam)
	selectedBuildId := params.Get(BuildIdParam)
	selectedNameSubstring := params.Get(NameMatchParam)
	return func(key string) bool {
		k := &typed.BuildDocKey{}
		err := k.Parse(key)
		if err != nil {
			return false
		}
		return keepBuildRowHelper(k.Pipeline, k.BuildId, selectedPipeline, selectedBuildId, selectedNameSubstring)
	}
}

func keepBuildRowHelper(pipeline string, buildId string, selectedPipeline string, selectedBuildId string, selectedNameSubstring string) bool {
	if selectedPipeline != "" && selectedPipeline != AllPipelines {
		// Keys store pipeline names with path separators folded
		if pipeline != typed.FoldPipelineName(selectedPipeline) {
			return false
		}
	}
	if selectedBuildId != "" && buildId != selectedBuildId {
		return false
	}
	if selectedNameSubstring != "" && !strings.Contains(pipeline, typed.FoldPipelineName(selectedNameSubstring)) {
		return false
	}
	return true
}
