/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package badgerwrap

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v2"
)

// This mock simulates badger with an in-memory map.  Useful for fast unit
// tests that don't want to touch the disk.  Transactions are simulated with a
// crude global lock.

type MockFactory struct {
}

type MockDb struct {
	lock *sync.RWMutex
	data map[string][]byte
}

type MockTxn struct {
	readOnly bool
	db       *MockDb
}

type MockItem struct {
	key   []byte
	value []byte
}

type MockIterator struct {
	opt        badger.IteratorOptions
	currentIdx int
	db         *MockDb
	// A snapshot of keys in sorted order
	keys []string
}

func (f *MockFactory) Open(opt badger.Options) (DB, error) {
	return &MockDb{lock: &sync.RWMutex{}, data: make(map[string][]byte)}, nil
}

// Database

func (b *MockDb) Close() error {
	return nil
}

func (b *MockDb) Sync() error {
	return nil
}

func (b *MockDb) Update(fn func(txn Txn) error) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return fn(&MockTxn{readOnly: false, db: b})
}

func (b *MockDb) View(fn func(txn Txn) error) error {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return fn(&MockTxn{readOnly: true, db: b})
}

func (b *MockDb) DropPrefix(prefix []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if len(b.data) == 0 {
		return fmt.Errorf("unable to delete prefix %s from empty table", string(prefix))
	}

	for key := range b.data {
		if strings.HasPrefix(key, string(prefix)) {
			delete(b.data, key)
		}
	}
	return nil
}

func (b *MockDb) Size() (lsm, vlog int64) {
	size := 0
	for k, v := range b.data {
		size += len(k) + len(v)
	}
	return int64(size), 0
}

func (b *MockDb) Tables(withKeysCount bool) []badger.TableInfo {
	keyCount := 0
	if withKeysCount {
		keyCount = len(b.data)
	}
	return []badger.TableInfo{
		{KeyCount: uint64(keyCount)},
	}
}

// Backup writes the whole store as json.  Not the real badger wire format,
// but it round-trips through MockDb.Load which is all the tests need.
func (b *MockDb) Backup(w io.Writer, since uint64) (uint64, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	err := json.NewEncoder(w).Encode(b.data)
	return 0, err
}

func (b *MockDb) Load(r io.Reader, maxPendingWrites int) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	loaded := map[string][]byte{}
	err := json.NewDecoder(r).Decode(&loaded)
	if err != nil {
		return err
	}
	for k, v := range loaded {
		b.data[k] = v
	}
	return nil
}

func (b *MockDb) RunValueLogGC(discardRatio float64) error {
	return nil
}

// Transaction

func (t *MockTxn) Get(key []byte) (Item, error) {
	data, ok := t.db.data[string(key)]
	if !ok {
		return nil, badger.ErrKeyNotFound
	}
	return &MockItem{key: key, value: data}, nil
}

func (t *MockTxn) Set(key, val []byte) error {
	if t.readOnly {
		return badger.ErrReadOnlyTxn
	}
	t.db.data[string(key)] = val
	return nil
}

func (t *MockTxn) Delete(key []byte) error {
	if t.readOnly {
		return badger.ErrReadOnlyTxn
	}
	delete(t.db.data, string(key))
	return nil
}

func (t *MockTxn) NewIterator(opt badger.IteratorOptions) Iterator {
	keys := []string{}
	for k := range t.db.data {
		keys = append(keys, k)
	}
	if opt.Reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	} else {
		sort.Strings(keys)
	}
	return &MockIterator{db: t.db, currentIdx: 0, opt: opt, keys: keys}
}

// Item

func (i *MockItem) Key() []byte {
	return i.key
}

func (i *MockItem) Value(fn func(val []byte) error) error {
	return fn(i.value)
}

func (i *MockItem) ValueCopy(dst []byte) ([]byte, error) {
	newcopy := make([]byte, len(i.value))
	copy(newcopy, i.value)
	return newcopy, nil
}

func (i *MockItem) EstimatedSize() int64 {
	return int64(len(i.key) + len(i.value))
}

func (i *MockItem) IsDeletedOrExpired() bool {
	return false
}

func (i *MockItem) KeyCopy(dst []byte) []byte {
	newcopy := make([]byte, len(i.key))
	copy(newcopy, i.key)
	return newcopy
}

// Iterator

func (i *MockIterator) Close() {
}

func (i *MockIterator) Item() Item {
	if i.currentIdx < len(i.keys) {
		thisKey := i.keys[i.currentIdx]
		return &MockItem{key: []byte(thisKey), value: i.db.data[thisKey]}
	}
	return nil
}

func (i *MockIterator) Next() {
	i.currentIdx += 1
}

// Seek moves to the provided key if present, otherwise to the next smallest
// key greater than it when iterating forward, and the reverse when iterating
// backward.
func (i *MockIterator) Seek(key []byte) {
	if !i.opt.Reverse {
		i.currentIdx = sort.SearchStrings(i.keys, string(key))
	} else {
		// Golang search requires ascending order, so flip, search, flip back
		sort.Strings(i.keys)
		i.currentIdx = len(i.keys) - sort.SearchStrings(i.keys, string(key))
		sort.Sort(sort.Reverse(sort.StringSlice(i.keys)))
	}
}

func (i *MockIterator) Valid() bool {
	return i.currentIdx >= 0 && i.currentIdx < len(i.keys)
}

func (i *MockIterator) ValidForPrefix(prefix []byte) bool {
	if !i.Valid() {
		return false
	}
	return strings.HasPrefix(i.keys[i.currentIdx], string(prefix))
}

func (i *MockIterator) Rewind() {
	i.currentIdx = 0
}
