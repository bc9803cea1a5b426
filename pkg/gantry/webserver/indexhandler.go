/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package webserver

import (
	"net/http"

	"github.com/spf13/afero"

	"github.com/gantryviz/gantry/pkg/gantry/queries"
)

type indexData struct {
	DefaultLookback string
	DefaultPipeline string
	DefaultQuery    string
	Queries         []string
}

func indexHandler(config WebConfig, fs *afero.Afero) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		indexTemplate, err := getTemplate(indexTemplateFile, fs)
		if err != nil {
			logWebError(err, "Template.New failed", request, writer)
			return
		}
		data := indexData{}
		data.DefaultLookback = config.DefaultLookback
		data.DefaultPipeline = config.DefaultPipeline
		data.DefaultQuery = queries.Default()
		data.Queries = queries.GetNamesOfQueries()

		err = indexTemplate.Execute(writer, data)
		if err != nil {
			logWebError(err, "Template.ExecuteTemplate failed", request, writer)
			return
		}
	}
}
