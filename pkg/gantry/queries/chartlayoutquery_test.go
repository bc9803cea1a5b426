/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gantryviz/gantry/pkg/gantry/chart"
	"github.com/gantryviz/gantry/pkg/gantry/model"
)

func Test_ChartLayoutQuery_NoDataReturnsEmptyObject(t *testing.T) {
	tables := helper_tablesWithBuilds(t, nil)
	res, err := ChartLayoutQuery(helper_get_params(), tables, someColorToId, someTs.Add(-time.Hour), someTs.Add(time.Hour), someRequestId)
	assert.Nil(t, err)
	assert.Equal(t, "{}", string(res))
}

func Test_ChartLayoutQuery_RendersEveryNodeAsARow(t *testing.T) {
	tables := helper_tablesWithBuilds(t, []model.BuildData{
		helper_someBuild("deploy", "1", someTs),
		helper_someBuild("smoke", "2", someTs.Add(5*time.Minute)),
	})

	res, err := ChartLayoutQuery(helper_get_params(), tables, someColorToId, someTs.Add(-time.Hour), someTs.Add(time.Hour), someRequestId)
	assert.Nil(t, err)

	var layout chart.Layout
	assert.Nil(t, json.Unmarshal(res, &layout))

	// Two builds, each a root plus one child
	assert.Equal(t, 4, len(layout.Rows))
	assert.Equal(t, "&lt;deploy:1&gt;", layout.Rows[0].Label)
	assert.Equal(t, "build", layout.Rows[1].Label)
	assert.Equal(t, 2, layout.Rows[1].Indent)
	// Builds come out ordered by start time
	assert.Equal(t, "&lt;smoke:2&gt;", layout.Rows[2].Label)

	assert.Equal(t, len(someColorToId)+1, len(layout.ColorStyles))
}

func Test_ChartLayoutQuery_PipelineParamSelectsOneBuild(t *testing.T) {
	tables := helper_tablesWithBuilds(t, []model.BuildData{
		helper_someBuild("deploy", "1", someTs),
		helper_someBuild("smoke", "2", someTs.Add(5*time.Minute)),
	})

	params := helper_get_params()
	params[PipelineParam] = []string{"smoke"}
	res, err := ChartLayoutQuery(params, tables, someColorToId, someTs.Add(-time.Hour), someTs.Add(time.Hour), someRequestId)
	assert.Nil(t, err)

	var layout chart.Layout
	assert.Nil(t, json.Unmarshal(res, &layout))
	assert.Equal(t, 2, len(layout.Rows))
	assert.Equal(t, "&lt;smoke:2&gt;", layout.Rows[0].Label)
}

func Test_ChartLayoutQuery_TitleParamOverridesTitle(t *testing.T) {
	tables := helper_tablesWithBuilds(t, []model.BuildData{
		helper_someBuild("deploy", "1", someTs),
	})

	params := helper_get_params()
	params[TitleParam] = []string{"release 228"}
	res, err := ChartLayoutQuery(params, tables, someColorToId, someTs.Add(-time.Hour), someTs.Add(time.Hour), someRequestId)
	assert.Nil(t, err)

	var layout chart.Layout
	assert.Nil(t, json.Unmarshal(res, &layout))
	assert.Equal(t, "release 228", layout.Title)
}

func Test_ChartLayoutQuery_FilterParamDropsBuilds(t *testing.T) {
	other := helper_someBuild("smoke", "2", someTs.Add(5*time.Minute))
	other.Parameters["RELEASE"] = "229"
	tables := helper_tablesWithBuilds(t, []model.BuildData{
		helper_someBuild("deploy", "1", someTs),
		other,
	})

	params := helper_get_params()
	params[FilterParam] = []string{`{"==": [{"var": "parameters.RELEASE"}, "228"]}`}
	res, err := ChartLayoutQuery(params, tables, someColorToId, someTs.Add(-time.Hour), someTs.Add(time.Hour), someRequestId)
	assert.Nil(t, err)

	var layout chart.Layout
	assert.Nil(t, json.Unmarshal(res, &layout))
	assert.Equal(t, 2, len(layout.Rows))
	assert.Equal(t, "&lt;deploy:1&gt;", layout.Rows[0].Label)
}
