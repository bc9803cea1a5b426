/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package typed

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

// BuildDocTable holds one zstd-compressed json build document per build.
type BuildDocTable struct {
	tableName string
}

func OpenBuildDocTable() *BuildDocTable {
	keyInst := &BuildDocKey{}
	return &BuildDocTable{tableName: keyInst.TableName()}
}

func (t *BuildDocTable) Set(txn badgerwrap.Txn, key string, value *model.BuildData) error {
	err := (&BuildDocKey{}).ValidateKey(key)
	if err != nil {
		return errors.Wrapf(err, "invalid key for table %v: %v", t.tableName, key)
	}

	outb, err := encodeBuildDoc(value)
	if err != nil {
		return errors.Wrapf(err, "encode for table %v failed", t.tableName)
	}

	err = txn.Set([]byte(key), outb)
	if err != nil {
		return errors.Wrapf(err, "set for table %v failed", t.tableName)
	}
	return nil
}

func (t *BuildDocTable) Get(txn badgerwrap.Txn, key string) (*model.BuildData, error) {
	err := (&BuildDocKey{}).ValidateKey(key)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid key for table %v: %v", t.tableName, key)
	}

	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		// Dont wrap. Need to preserve error type
		return nil, err
	} else if err != nil {
		return nil, errors.Wrapf(err, "get failed for table %v", t.tableName)
	}

	valueBytes, err := item.ValueCopy(nil)
	if err != nil {
		return nil, errors.Wrapf(err, "value copy failed for table %v", t.tableName)
	}

	retValue, err := decodeBuildDoc(valueBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "decode failed for table %v on value length %v", t.tableName, len(valueBytes))
	}
	return retValue, nil
}

func (t *BuildDocTable) GetMinKey(txn badgerwrap.Txn) (bool, string) {
	keyPrefix := "/" + t.tableName + "/"
	iterOpt := badger.DefaultIteratorOptions
	iterOpt.Prefix = []byte(keyPrefix)
	iterator := txn.NewIterator(iterOpt)
	defer iterator.Close()
	iterator.Seek([]byte(keyPrefix))
	if !iterator.ValidForPrefix([]byte(keyPrefix)) {
		return false, ""
	}
	return true, string(iterator.Item().Key())
}

func (t *BuildDocTable) GetMaxKey(txn badgerwrap.Txn) (bool, string) {
	keyPrefix := "/" + t.tableName + "/"
	iterOpt := badger.DefaultIteratorOptions
	iterOpt.Prefix = []byte(keyPrefix)
	iterOpt.Reverse = true
	iterator := txn.NewIterator(iterOpt)
	defer iterator.Close()
	// Seek to the end of the range by adding a 255 character at the end
	iterator.Seek([]byte(keyPrefix + string(rune(255))))
	if !iterator.Valid() {
		return false, ""
	}
	return true, string(iterator.Item().Key())
}

func (t *BuildDocTable) GetMinMaxPartitions(txn badgerwrap.Txn) (bool, string, string) {
	ok, minKeyStr := t.GetMinKey(txn)
	if !ok {
		return false, "", ""
	}
	ok, maxKeyStr := t.GetMaxKey(txn)
	if !ok {
		// This should be impossible
		return false, "", ""
	}

	minKey := &BuildDocKey{}
	maxKey := &BuildDocKey{}

	err := minKey.Parse(minKeyStr)
	if err != nil {
		panic(fmt.Sprintf("invalid key in table: %v key: %q error: %v", t.tableName, minKeyStr, err))
	}

	err = maxKey.Parse(maxKeyStr)
	if err != nil {
		panic(fmt.Sprintf("invalid key in table: %v key: %q error: %v", t.tableName, maxKeyStr, err))
	}

	return true, minKey.PartitionId, maxKey.PartitionId
}

func (t *BuildDocTable) GetUniquePartitionList(txn badgerwrap.Txn) ([]string, error) {
	partitions := []string{}
	ok, minPar, maxPar := t.GetMinMaxPartitions(txn)
	if ok {
		parDuration := untyped.GetPartitionDuration()
		for curPar := minPar; curPar <= maxPar; {
			partitions = append(partitions, curPar)
			partInt, err := strconv.ParseInt(curPar, 10, 64)
			if err != nil {
				return partitions, errors.Wrapf(err, "failed to get partition:%v", curPar)
			}
			parTime := time.Unix(partInt, 0).UTC().Add(parDuration)
			curPar = untyped.GetPartitionId(parTime)
		}
	}
	return partitions, nil
}

// RangeRead returns every build document in partitions intersecting
// [startTime, endTime] that passes the key and value predicates.  Rows from
// the edge partitions can fall outside the requested range; callers filter on
// the document timestamps.
func (t *BuildDocTable) RangeRead(
	txn badgerwrap.Txn,
	keyPrefix *BuildDocKey,
	keyPredicateFn func(string) bool,
	valPredicateFn func(*model.BuildData) bool,
	startTime time.Time,
	endTime time.Time) (map[BuildDocKey]*model.BuildData, RangeReadStats, error) {

	builds := map[BuildDocKey]*model.BuildData{}

	stats := RangeReadStats{}
	before := time.Now()

	partitionList, err := t.GetPartitionsFromTimeRange(txn, startTime, endTime)
	stats.PartitionCount = len(partitionList)
	if err != nil {
		return builds, stats, errors.Wrapf(err, "failed to get partitions from table:%v, from startTime:%v, to endTime:%v", t.tableName, startTime, endTime)
	}

	for _, currentPartition := range partitionList {
		var seekStr string
		if keyPrefix == nil {
			seekStr = "/" + t.tableName + "/" + currentPartition + "/"
		} else {
			keyPrefix.SetPartitionId(currentPartition)
			seekStr = keyPrefix.String()
		}

		itr := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(seekStr)})

		for itr.Seek([]byte(seekStr)); itr.ValidForPrefix([]byte(seekStr)); itr.Next() {
			stats.RowsVisitedCount += 1
			if keyPredicateFn != nil && !keyPredicateFn(string(itr.Item().Key())) {
				continue
			}
			key := BuildDocKey{}
			err := key.Parse(string(itr.Item().Key()))
			if err != nil {
				itr.Close()
				return nil, stats, err
			}

			stats.RowsPassedKeyPredicateCount += 1

			valueBytes, err := itr.Item().ValueCopy(nil)
			if err != nil {
				itr.Close()
				return nil, stats, err
			}
			retValue, err := decodeBuildDoc(valueBytes)
			if err != nil {
				itr.Close()
				return nil, stats, err
			}
			if valPredicateFn != nil && !valPredicateFn(retValue) {
				continue
			}
			stats.RowsPassedValuePredicateCount += 1
			builds[key] = retValue
		}

		itr.Close()
	}

	stats.Elapsed = time.Since(before)
	stats.TableName = t.tableName
	return builds, stats, nil
}

func (t *BuildDocTable) GetPartitionsFromTimeRange(txn badgerwrap.Txn, startTime time.Time, endTime time.Time) ([]string, error) {
	partitions := []string{}
	startPartition := untyped.GetPartitionId(startTime)
	endPartition := untyped.GetPartitionId(endTime)
	parDuration := untyped.GetPartitionDuration()
	for curPar := startPartition; curPar <= endPartition; {
		partitions = append(partitions, curPar)
		partInt, err := strconv.ParseInt(curPar, 10, 64)
		if err != nil {
			return partitions, errors.Wrapf(err, "failed to get partition:%v", curPar)
		}
		parTime := time.Unix(partInt, 0).UTC().Add(parDuration)
		curPar = untyped.GetPartitionId(parTime)
	}
	return partitions, nil
}
