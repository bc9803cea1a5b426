/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package processing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

const someMaxLookback = 14 * 24 * time.Hour

func helper_tables(t *testing.T) typed.Tables {
	db, err := untyped.OpenStore(&badgerwrap.MockFactory{}, t.TempDir(), time.Hour)
	assert.Nil(t, err)
	return typed.NewTableList(db)
}

func helper_recentBuild(jobName string, buildId string) model.BuildData {
	start := time.Now().Add(-1 * time.Hour)
	return model.BuildData{
		JobName:          jobName,
		BuildId:          buildId,
		Title:            buildId,
		BuildStartTimeMs: start.UnixMilli(),
		BuildEndTimeMs:   start.Add(10 * time.Minute).UnixMilli(),
		NodeRoot:         &model.Node{Name: "<" + jobName + ":" + buildId + ">"},
	}
}

func Test_updateBuildDocTable_WritesToBuildPartition(t *testing.T) {
	tables := helper_tables(t)
	build := helper_recentBuild("deploy/build-webapp", "1543")

	err := tables.Db().Update(func(txn badgerwrap.Txn) error {
		return updateBuildDocTable(tables, txn, &build, someMaxLookback)
	})
	assert.Nil(t, err)

	partitionId := untyped.GetPartitionId(time.UnixMilli(build.BuildStartTimeMs))
	key := typed.NewBuildDocKey(partitionId, build.JobName, build.BuildId)
	err = tables.Db().View(func(txn badgerwrap.Txn) error {
		stored, err := tables.BuildDocTable().Get(txn, key.String())
		assert.Nil(t, err)
		assert.Equal(t, "1543", stored.BuildId)
		return nil
	})
	assert.Nil(t, err)
}

func Test_updateBuildDocTable_DropsBuildsOlderThanMaxLookback(t *testing.T) {
	tables := helper_tables(t)
	build := helper_recentBuild("deploy", "7")
	build.BuildStartTimeMs = time.Now().Add(-30 * 24 * time.Hour).UnixMilli()

	err := tables.Db().Update(func(txn badgerwrap.Txn) error {
		return updateBuildDocTable(tables, txn, &build, someMaxLookback)
	})
	assert.Nil(t, err)

	err = tables.Db().View(func(txn badgerwrap.Txn) error {
		found, _ := tables.BuildDocTable().GetMinKey(txn)
		assert.False(t, found)
		return nil
	})
	assert.Nil(t, err)
}

func Test_updateBuildDocTable_MissingNodeTreeFails(t *testing.T) {
	tables := helper_tables(t)
	build := helper_recentBuild("deploy", "7")
	build.NodeRoot = nil

	err := tables.Db().Update(func(txn badgerwrap.Txn) error {
		return updateBuildDocTable(tables, txn, &build, someMaxLookback)
	})
	assert.NotNil(t, err)
}

func Test_Runner_DrainsChannelIntoStore(t *testing.T) {
	tables := helper_tables(t)
	buildChan := make(chan model.BuildData, 5)

	runner := NewProcessing(buildChan, tables, someMaxLookback)
	runner.Start()
	buildChan <- helper_recentBuild("deploy", "1")
	buildChan <- helper_recentBuild("deploy", "2")
	close(buildChan)
	runner.Wait()

	err := tables.Db().View(func(txn badgerwrap.Txn) error {
		docs, _, err := tables.BuildDocTable().RangeRead(txn, nil, nil, nil, time.Now().Add(-2*time.Hour), time.Now())
		assert.Nil(t, err)
		assert.Equal(t, 2, len(docs))
		return nil
	})
	assert.Nil(t, err)
}
