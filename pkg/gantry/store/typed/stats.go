/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package typed

import (
	"time"

	"github.com/golang/glog"
)

type RangeReadStats struct {
	TableName                     string
	PartitionCount                int
	RowsVisitedCount              int
	RowsPassedKeyPredicateCount   int
	RowsPassedValuePredicateCount int
	Elapsed                       time.Duration
}

func (stats RangeReadStats) Log(requestId string) {
	glog.Infof("reqId: %v range read on table %v took %v.  Partitions scanned %v.  Rows scanned %v, past key predicate %v, past value predicate %v",
		requestId, stats.TableName, stats.Elapsed, stats.PartitionCount, stats.RowsVisitedCount, stats.RowsPassedKeyPredicateCount, stats.RowsPassedValuePredicateCount)
}
