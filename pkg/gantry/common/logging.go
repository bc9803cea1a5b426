/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package common

import "github.com/golang/glog"

// Log verbosity levels for use with glog.V()
const (
	LogLevelInfo  glog.Level = 1
	LogLevelDebug glog.Level = 2
	LogLevelTrace glog.Level = 3
)
