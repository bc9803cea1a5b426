/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

import (
	"flag"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

func init() {
	flag.Set("alsologtostderr", fmt.Sprintf("%t", true))
}

var (
	someTs          = time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC)
	someRequestId   = "req-4567"
	someMaxLookBack = 14 * 24 * time.Hour
	someColorToId   = map[string]int{"#000000": 0, "#6666b9": 1}
)

func helper_get_params() url.Values {
	return url.Values{}
}

func helper_someBuild(jobName string, buildId string, start time.Time) model.BuildData {
	startMs := start.UnixMilli()
	endMs := start.Add(10 * time.Minute).UnixMilli()
	return model.BuildData{
		JobName:          jobName,
		BuildId:          buildId,
		Title:            jobName + " " + buildId,
		Parameters:       map[string]string{"RELEASE": "228"},
		BuildStartTimeMs: startMs,
		BuildEndTimeMs:   endMs,
		NodeRoot: &model.Node{
			Name: fmt.Sprintf("<%v:%v>", jobName, buildId),
			Intervals: []model.Interval{
				{StartTimeMs: startMs, EndTimeMs: endMs, Mode: model.ModeRunning, ColorId: 0},
			},
			Children: []*model.Node{
				{
					Name: "build",
					Intervals: []model.Interval{
						{StartTimeMs: startMs, EndTimeMs: start.Add(5 * time.Minute).UnixMilli(), Mode: model.ModeRunning, ColorId: 1},
					},
				},
			},
		},
	}
}

func helper_tablesWithBuilds(t *testing.T, builds []model.BuildData) typed.Tables {
	db, err := untyped.OpenStore(&badgerwrap.MockFactory{}, t.TempDir(), time.Hour)
	assert.Nil(t, err)
	tables := typed.NewTableList(db)
	err = db.Update(func(txn badgerwrap.Txn) error {
		for i := range builds {
			partitionId := untyped.GetPartitionId(time.UnixMilli(builds[i].BuildStartTimeMs))
			key := typed.NewBuildDocKey(partitionId, builds[i].JobName, builds[i].BuildId)
			err2 := tables.BuildDocTable().Set(txn, key.String(), &builds[i])
			if err2 != nil {
				return err2
			}
		}
		return nil
	})
	assert.Nil(t, err)
	return tables
}
