/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package badgerwrap

import (
	"bytes"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
)

func helper_openMock(t *testing.T) DB {
	db, err := (&MockFactory{}).Open(badger.DefaultOptions(""))
	assert.Nil(t, err)
	return db
}

func helper_set(t *testing.T, db DB, keyValues ...string) {
	err := db.Update(func(txn Txn) error {
		for i := 0; i < len(keyValues); i += 2 {
			if err := txn.Set([]byte(keyValues[i]), []byte(keyValues[i+1])); err != nil {
				return err
			}
		}
		return nil
	})
	assert.Nil(t, err)
}

func Test_MockDb_SetThenGet(t *testing.T) {
	db := helper_openMock(t)
	helper_set(t, db, "/builddoc/001/deploy/5", "somevalue")

	err := db.View(func(txn Txn) error {
		item, err := txn.Get([]byte("/builddoc/001/deploy/5"))
		assert.Nil(t, err)
		value, err := item.ValueCopy(nil)
		assert.Nil(t, err)
		assert.Equal(t, "somevalue", string(value))
		return nil
	})
	assert.Nil(t, err)
}

func Test_MockDb_GetMissingKeyReturnsKeyNotFound(t *testing.T) {
	db := helper_openMock(t)
	err := db.View(func(txn Txn) error {
		_, err := txn.Get([]byte("/nope"))
		assert.Equal(t, badger.ErrKeyNotFound, err)
		return nil
	})
	assert.Nil(t, err)
}

func Test_MockDb_SetInViewFails(t *testing.T) {
	db := helper_openMock(t)
	err := db.View(func(txn Txn) error {
		return txn.Set([]byte("a"), []byte("b"))
	})
	assert.Equal(t, badger.ErrReadOnlyTxn, err)
}

func Test_MockDb_IteratorSortedForward(t *testing.T) {
	db := helper_openMock(t)
	helper_set(t, db, "/b", "2", "/a", "1", "/c", "3")

	keys := []string{}
	_ = db.View(func(txn Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()))
		}
		return nil
	})
	assert.Equal(t, []string{"/a", "/b", "/c"}, keys)
}

func Test_MockDb_ReverseSeekFindsEndOfRange(t *testing.T) {
	db := helper_openMock(t)
	helper_set(t, db, "/t/1", "", "/t/2", "", "/t/3", "", "/u/1", "")

	var lastInRange string
	_ = db.View(func(txn Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.Reverse = true
		it := txn.NewIterator(opt)
		defer it.Close()
		it.Seek([]byte("/t/" + string(rune(255))))
		assert.True(t, it.ValidForPrefix([]byte("/t/")))
		lastInRange = string(it.Item().Key())
		return nil
	})
	assert.Equal(t, "/t/3", lastInRange)
}

func Test_MockDb_DropPrefix(t *testing.T) {
	db := helper_openMock(t)
	helper_set(t, db, "/t/1", "", "/t/2", "", "/u/1", "")
	assert.Nil(t, db.DropPrefix([]byte("/t/")))

	count := 0
	_ = db.View(func(txn Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	assert.Equal(t, 1, count)
}

func Test_MockDb_BackupLoadRoundTrip(t *testing.T) {
	db := helper_openMock(t)
	helper_set(t, db, "/t/1", "one", "/t/2", "two")

	var buf bytes.Buffer
	_, err := db.Backup(&buf, 0)
	assert.Nil(t, err)

	restored := helper_openMock(t)
	assert.Nil(t, restored.Load(&buf, 1))

	_ = restored.View(func(txn Txn) error {
		item, err := txn.Get([]byte("/t/2"))
		assert.Nil(t, err)
		value, _ := item.ValueCopy(nil)
		assert.Equal(t, "two", string(value))
		return nil
	})
}
