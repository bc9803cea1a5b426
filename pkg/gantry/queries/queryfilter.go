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

	"github.com/diegoholiveira/jsonlogic/v3"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// The filter param carries a jsonlogic rule evaluated against each build
// document, for example {"==": [{"var": "parameters.RELEASE"}, "228"]}.
// Builds where the rule is not exactly true are dropped.
func buildFilterFromParams(params url.Values) (func(*model.BuildData) bool, error) {
	ruleJson := params.Get(FilterParam)
	if ruleJson == "" {
		return nil, nil
	}
	var rule interface{}
	err := json.Unmarshal([]byte(ruleJson), &rule)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %v param: %q", FilterParam, ruleJson)
	}
	if !jsonlogic.ValidateJsonLogic(rule) {
		return nil, errors.Errorf("invalid jsonlogic rule in %v param: %q", FilterParam, ruleJson)
	}
	return func(build *model.BuildData) bool {
		result, err := jsonlogic.ApplyInterface(rule, buildFilterData(build))
		if err != nil {
			glog.Errorf("Filter rule failed on build %v:%v: %v", build.JobName, build.BuildId, err)
			return false
		}
		keep, ok := result.(bool)
		return ok && keep
	}, nil
}

func buildFilterData(build *model.BuildData) interface{} {
	parameters := map[string]interface{}{}
	for key, value := range build.Parameters {
		parameters[key] = value
	}
	return map[string]interface{}{
		"jobName":    build.JobName,
		"buildId":    build.BuildId,
		"title":      build.Title,
		"parameters": parameters,
	}
}
