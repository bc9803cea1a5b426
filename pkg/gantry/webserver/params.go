/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package webserver

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Need to allow:
// 1) Pipeline names after folding: a-z, digits, '-', '_' and '.'
// 2) All const "_all"
// 3) Table names like "builddoc"
func cleanStringFromParam(request *http.Request, paramName string, defaultStr string) string {
	strVal := request.URL.Query().Get(paramName)
	if strVal == "" {
		return defaultStr
	}
	reg := regexp.MustCompile("[^a-zA-Z0-9\\-_.]+")
	clean := reg.ReplaceAllString(strVal, "")
	clean = strings.ReplaceAll(clean, "..", "")
	return clean
}

func numberFromParam(request *http.Request, paramName string, defaultNum int) int {
	numStr := request.URL.Query().Get(paramName)
	if numStr == "" {
		return defaultNum
	}
	numVal, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return defaultNum
	}
	return int(numVal)
}
