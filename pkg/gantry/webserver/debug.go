/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/dgraph-io/badger/v2"
	"github.com/golang/glog"
	"github.com/spf13/afero"

	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

type keysData struct {
	Keys        []string
	TotalKeys   int
	TotalSize   int64
	KeysMatched int
}

func debugHandler(fs *afero.Afero) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		debugTemplate, err := getTemplate(debugTemplateFile, fs)
		if err != nil {
			logWebError(err, "failed to parse template", request, writer)
			return
		}
		err = debugTemplate.Execute(writer, nil)
		if err != nil {
			logWebError(err, "Template.ExecuteTemplate failed", request, writer)
			return
		}
	}
}

func configHandler(configYaml string, fs *afero.Afero) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		debugConfigTemplate, err := getTemplate(debugConfigTemplateFile, fs)
		if err != nil {
			logWebError(err, "failed to parse template", request, writer)
			return
		}
		err = debugConfigTemplate.Execute(writer, configYaml)
		if err != nil {
			logWebError(err, "Template.ExecuteTemplate failed", request, writer)
			return
		}
	}
}

func listKeysHandler(tables typed.Tables, fs *afero.Afero) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		table := cleanStringFromParam(request, "table", (&typed.BuildDocKey{}).TableName())
		keyMatchRegExStr := request.URL.Query().Get("keymatch")
		keyRegEx, err := regexp.Compile(keyMatchRegExStr)
		if err != nil {
			logWebError(err, "Invalid regex", request, writer)
			return
		}
		maxRows := numberFromParam(request, "maxrows", 500)
		var keys []string

		count := 0
		totalCount := 0
		var totalSize int64 = 0
		err = tables.Db().View(func(txn badgerwrap.Txn) error {
			keyPrefix := []byte("/" + table + "/")

			iterOpt := badger.DefaultIteratorOptions
			iterOpt.Prefix = keyPrefix
			itr := txn.NewIterator(iterOpt)
			defer itr.Close()

			for itr.Seek(keyPrefix); itr.ValidForPrefix(keyPrefix); itr.Next() {
				totalCount++
				thisKey := string(itr.Item().Key())
				if keyRegEx.MatchString(thisKey) {
					keys = append(keys, thisKey)
					count += 1
					totalSize += itr.Item().EstimatedSize()
					if count >= maxRows {
						glog.Infof("Number of rows : %v has reached max rows: %v", count, maxRows)
						break
					}
				}
			}

			return nil
		})
		if err != nil {
			logWebError(err, "Could not list keys", request, writer)
			return
		}

		writer.Header().Set("content-type", "text/html")

		debugListKeysTemplate, err := getTemplate(debugListKeysTemplateFile, fs)
		if err != nil {
			logWebError(err, "failed to parse template", request, writer)
			return
		}
		var result keysData
		result.Keys = keys
		result.TotalKeys = totalCount
		result.TotalSize = totalSize
		result.KeysMatched = count
		err = debugListKeysTemplate.Execute(writer, result)
		if err != nil {
			logWebError(err, "Template.ExecuteTemplate failed", request, writer)
			return
		}
	}
}

// viewKeyHandler dumps the stored document for one key as indented JSON.
func viewKeyHandler(tables typed.Tables) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		key := request.FormValue("k")
		if (&typed.BuildDocKey{}).Parse(key) != nil {
			logWebError(fmt.Errorf("invalid key: %v", key), "view key failed", request, writer)
			return
		}

		var doc interface{}
		err := tables.Db().View(func(txn badgerwrap.Txn) error {
			buildDoc, err := tables.BuildDocTable().Get(txn, key)
			if err != nil {
				return err
			}
			doc = *buildDoc
			return nil
		})
		if err != nil {
			logWebError(err, "view transaction failed", request, writer)
			return
		}

		prettyJson, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			logWebError(err, fmt.Sprintf("failed to marshal document for key: %v", key), request, writer)
			return
		}
		writer.Header().Set("content-type", "application/json")
		writer.Write(prettyJson)
	}
}

// Make a copy with string keys instead of []byte keys
type badgerTableInfo struct {
	Level    int
	LeftKey  string
	RightKey string
	KeyCount uint64
	ID       uint64
	Size     uint64
}

func debugBadgerTablesHandler(db badgerwrap.DB) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data := []badgerTableInfo{}
		for _, table := range db.Tables(true) {
			thisTable := badgerTableInfo{
				Level:    table.Level,
				LeftKey:  string(table.Left),
				RightKey: string(table.Right),
				KeyCount: table.KeyCount,
				ID:       table.ID,
				Size:     table.EstimatedSz,
			}
			data = append(data, thisTable)
		}
		prettyJson, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			logWebError(err, "failed to marshal badger table info", request, writer)
			return
		}
		writer.Header().Set("content-type", "application/json")
		writer.Write(prettyJson)
	}
}
