/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package common

import (
	"fmt"
	"strings"
)

func BoolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

// Build document keys look like /builddoc/<partition>/<pipeline>/<buildid>
func ParseKey(key string) (error, []string) {
	parts := strings.Split(key, "/")
	if len(parts) != 5 {
		return fmt.Errorf("key should have 4 parts: %v", key), parts
	}
	if parts[0] != "" {
		return fmt.Errorf("key should start with /: %v", key), parts
	}

	return nil, parts
}

func Contains(stringList []string, elem string) bool {
	for _, str := range stringList {
		if str == elem {
			return true
		}
	}
	return false
}
