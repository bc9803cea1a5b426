/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package typed

import (
	"sort"

	"github.com/golang/glog"

	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

type Tables interface {
	BuildDocTable() *BuildDocTable
	Db() badgerwrap.DB
	GetMinAndMaxPartition() (bool, string, string, error)
	GetTableNames() []string
	GetTables() []interface{}
}

type MinMaxPartitionsGetter interface {
	GetMinMaxPartitions(badgerwrap.Txn) (bool, string, string)
}

type tablesImpl struct {
	buildDocTable *BuildDocTable
	db            badgerwrap.DB
}

func NewTableList(db badgerwrap.DB) Tables {
	t := &tablesImpl{}
	t.buildDocTable = OpenBuildDocTable()
	t.db = db
	return t
}

func (t *tablesImpl) BuildDocTable() *BuildDocTable {
	return t.buildDocTable
}

func (t *tablesImpl) Db() badgerwrap.DB {
	return t.db
}

func (t *tablesImpl) GetMinAndMaxPartition() (bool, string, string, error) {
	allPartitions := []string{}
	err := t.db.View(func(txn badgerwrap.Txn) error {
		for _, table := range t.GetTables() {
			coerced, canCoerce := table.(MinMaxPartitionsGetter)
			if !canCoerce {
				glog.Errorf("Expected type to implement GetMinMaxPartitions but failed")
				continue
			}
			ok, minPar, maxPar := coerced.GetMinMaxPartitions(txn)
			if ok {
				allPartitions = append(allPartitions, minPar, maxPar)
			}
		}
		return nil
	})

	if err != nil {
		return false, "", "", err
	}
	if len(allPartitions) == 0 {
		return false, "", "", nil
	}

	sort.Strings(allPartitions)
	return true, allPartitions[0], allPartitions[len(allPartitions)-1], nil
}

func (t *tablesImpl) GetTableNames() []string {
	return []string{t.buildDocTable.tableName}
}

func (t *tablesImpl) GetTables() []interface{} {
	return []interface{}{t.buildDocTable}
}
