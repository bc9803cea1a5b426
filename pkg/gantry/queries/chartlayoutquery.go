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
	"time"

	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/chart"
	"github.com/gantryviz/gantry/pkg/gantry/ingress"
	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

// ChartLayoutQuery renders the matching builds into the chart layout the
// front end draws directly.  With no matches it returns an empty object so
// the page can show "no data" instead of an error.
func ChartLayoutQuery(params url.Values, tables typed.Tables, colorToId map[string]int, startTime time.Time, endTime time.Time, requestId string) ([]byte, error) {
	builds, err := rangeReadBuilds(params, tables, startTime, endTime, requestId)
	if err != nil {
		return []byte{}, err
	}
	if len(builds) == 0 {
		return []byte("{}"), nil
	}

	taskDoc, err := ingress.AssembleTask(builds, colorToId, params.Get(TitleParam))
	if err != nil {
		return []byte{}, errors.Wrap(err, "failed to assemble task document")
	}
	layout, err := chart.Assemble(&taskDoc)
	if err != nil {
		return []byte{}, errors.Wrap(err, "failed to lay out chart")
	}

	bytes, err := json.MarshalIndent(layout, "", " ")
	if err != nil {
		return []byte{}, errors.Wrap(err, "failed to marshal chart layout")
	}
	return bytes, nil
}

func rangeReadBuilds(params url.Values, tables typed.Tables, startTime time.Time, endTime time.Time, requestId string) ([]model.BuildData, error) {
	valPredicateFn, err := buildFilterFromParams(params)
	if err != nil {
		return nil, err
	}

	var buildMap map[typed.BuildDocKey]*model.BuildData
	err = tables.Db().View(func(txn badgerwrap.Txn) error {
		var err2 error
		var stats typed.RangeReadStats
		buildMap, stats, err2 = tables.BuildDocTable().RangeRead(txn, nil, paramFilterBuildDocFn(params), valPredicateFn, startTime, endTime)
		if err2 != nil {
			return err2
		}
		stats.Log(requestId)
		return nil
	})
	if err != nil {
		return nil, err
	}

	builds := []model.BuildData{}
	for _, build := range buildMap {
		builds = append(builds, *build)
	}
	return builds, nil
}
