/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package badgerwrap

import (
	"io"

	"github.com/dgraph-io/badger/v2"
)

// Factory lets the untyped store open databases with either the real badger
// implementation or the in-memory mock.
type Factory interface {
	Open(opt badger.Options) (DB, error)
}

// DB is the subset of badger.DB the rest of the code is allowed to touch.
type DB interface {
	Close() error
	Sync() error
	Update(fn func(txn Txn) error) error
	View(fn func(txn Txn) error) error
	DropPrefix(prefix []byte) error
	Size() (lsm, vlog int64)
	Tables(withKeysCount bool) []badger.TableInfo
	Backup(w io.Writer, since uint64) (uint64, error)
	Load(r io.Reader, maxPendingWrites int) error
	RunValueLogGC(discardRatio float64) error
}

type Txn interface {
	Get(key []byte) (Item, error)
	Set(key, val []byte) error
	Delete(key []byte) error
	NewIterator(opt badger.IteratorOptions) Iterator
}

type Item interface {
	Key() []byte
	Value(fn func(val []byte) error) error
	ValueCopy(dst []byte) ([]byte, error)
	EstimatedSize() int64
	IsDeletedOrExpired() bool
	KeyCopy(dst []byte) []byte
}

type Iterator interface {
	Close()
	Item() Item
	Next()
	Seek(key []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Rewind()
}
