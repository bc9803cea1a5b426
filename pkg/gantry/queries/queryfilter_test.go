/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_buildFilterFromParams_AbsentParamMeansNoFilter(t *testing.T) {
	filterFn, err := buildFilterFromParams(helper_get_params())
	assert.Nil(t, err)
	assert.Nil(t, filterFn)
}

func Test_buildFilterFromParams_InvalidJsonFails(t *testing.T) {
	params := helper_get_params()
	params[FilterParam] = []string{"{not json"}
	_, err := buildFilterFromParams(params)
	assert.NotNil(t, err)
}

func Test_buildFilterFromParams_MatchesOnParameters(t *testing.T) {
	params := helper_get_params()
	params[FilterParam] = []string{`{"==": [{"var": "parameters.RELEASE"}, "228"]}`}
	filterFn, err := buildFilterFromParams(params)
	assert.Nil(t, err)

	match := helper_someBuild("deploy", "1", someTs)
	assert.True(t, filterFn(&match))

	miss := helper_someBuild("deploy", "2", someTs)
	miss.Parameters["RELEASE"] = "229"
	assert.False(t, filterFn(&miss))
}

func Test_buildFilterFromParams_MatchesOnJobName(t *testing.T) {
	params := helper_get_params()
	params[FilterParam] = []string{`{"in": ["smoke", {"var": "jobName"}]}`}
	filterFn, err := buildFilterFromParams(params)
	assert.Nil(t, err)

	match := helper_someBuild("deploy/smoke-test", "1", someTs)
	assert.True(t, filterFn(&match))

	miss := helper_someBuild("deploy", "2", someTs)
	assert.False(t, filterFn(&miss))
}

func Test_buildFilterFromParams_NonBooleanResultDropsBuild(t *testing.T) {
	params := helper_get_params()
	params[FilterParam] = []string{`{"var": "title"}`}
	filterFn, err := buildFilterFromParams(params)
	assert.Nil(t, err)

	build := helper_someBuild("deploy", "1", someTs)
	assert.False(t, filterFn(&build))
}
