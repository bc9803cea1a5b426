/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package common

import (
	badger "github.com/dgraph-io/badger/v2"

	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

func deleteKeys(db badgerwrap.DB, keysForDelete [][]byte) (error, uint64) {
	var deletedKeysInThisBatch uint64 = 0
	err := db.Update(func(txn badgerwrap.Txn) error {
		for _, key := range keysForDelete {
			err := txn.Delete(key)
			if err != nil {
				return err
			}
			deletedKeysInThisBatch++
		}
		return nil
	})

	if err != nil {
		return err, deletedKeysInThisBatch
	}

	return nil, deletedKeysInThisBatch
}

// Deletes all keys with the given prefix in batches.  Deletion does not lock
// the db, so new keys with the same prefix can land while we delete.  We count
// the matching keys up front and stop once that many are gone to avoid chasing
// a moving target.
func DeleteKeysWithPrefix(keyPrefix []byte, db badgerwrap.DB, deletionBatchSize int) (error, uint64, uint64) {
	numOfKeysToDelete := GetTotalKeyCount(db, keyPrefix)
	var numOfKeysDeleted uint64 = 0
	for numOfKeysDeleted < numOfKeysToDelete {
		keysThisBatch := make([][]byte, 0, deletionBatchSize)

		_ = db.View(func(txn badgerwrap.Txn) error {
			iterOpt := badger.DefaultIteratorOptions
			iterOpt.Prefix = keyPrefix
			iterOpt.PrefetchValues = false
			it := txn.NewIterator(iterOpt)
			defer it.Close()

			for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
				keyToDel := it.Item().KeyCopy(nil)
				keysThisBatch = append(keysThisBatch, keyToDel)
				if len(keysThisBatch) == deletionBatchSize {
					break
				}
			}
			return nil
		})

		if len(keysThisBatch) == 0 {
			break
		}

		err, deletedKeysInThisBatch := deleteKeys(db, keysThisBatch)
		numOfKeysDeleted += deletedKeysInThisBatch
		if err != nil {
			return err, numOfKeysDeleted, numOfKeysToDelete
		}
	}
	return nil, numOfKeysDeleted, numOfKeysToDelete
}

// Returns the number of keys in the db with the given prefix.  An empty prefix
// counts every key.
func GetTotalKeyCount(db badgerwrap.DB, keyPrefix []byte) uint64 {
	var totalKeyCount uint64 = 0
	_ = db.View(func(txn badgerwrap.Txn) error {
		iterOpt := badger.DefaultIteratorOptions
		iterOpt.PrefetchValues = false
		if len(keyPrefix) != 0 {
			iterOpt.Prefix = keyPrefix
		}
		it := txn.NewIterator(iterOpt)
		defer it.Close()
		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			totalKeyCount++
		}
		return nil
	})
	return totalKeyCount
}
