/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package queries

import (
	"net/url"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped"
)

func timeFromUnixMsParam(params url.Values, paramName string) (time.Time, bool) {
	value := params.Get(paramName)
	if value == "" {
		return time.Time{}, false
	}
	unixMs, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		glog.Errorf("Invalid %v param: %v.  err: %v", paramName, value, err)
		return time.Time{}, false
	}
	return time.Unix(unixMs/1000, 1000*1000*(unixMs%1000)).UTC(), true
}

// This computes a start and end time for a given query.  Explicit start/end date params win, else if user
// specifies a time duration we use it, otherwise
// we use maxLookBack from config.  For the end time if not specified we want to use newest data in the store.
// That way we can look at old data sets without clipping.  We know the min and max time of the newest partition
// but we dont really know the newest record within that range.  For now just use end of newest partition.
func computeTimeRange(params url.Values, tables typed.Tables, maxLookBack time.Duration) (time.Time, time.Time) {
	now := time.Now()

	// If web request specifies a valid lookback use that, else use the config for the store
	queryDuration := maxLookBack
	queryLookBack := params.Get(LookbackParam)
	if queryLookBack != "" {
		var err error
		queryDuration, err = time.ParseDuration(queryLookBack)
		if err != nil {
			glog.Errorf("Invalid lookback param: %v.  err: %v", queryLookBack, err)
		}
	}
	if queryDuration < 10*time.Minute || queryDuration > maxLookBack {
		queryDuration = maxLookBack
	}

	// Explicit start/end params, in unix milliseconds, pin the window to a
	// fixed range instead of the newest data.  A missing edge is derived
	// from the other one with the lookback, and the window is still capped
	// at maxLookBack.
	startParam, hasStart := timeFromUnixMsParam(params, StartDateParam)
	endParam, hasEnd := timeFromUnixMsParam(params, EndDateParam)
	if hasStart || hasEnd {
		if !hasStart {
			startParam = endParam.Add(-1 * queryDuration)
		}
		if !hasEnd {
			endParam = startParam.Add(queryDuration)
		}
		if endParam.After(startParam) {
			if endParam.Sub(startParam) > maxLookBack {
				startParam = endParam.Add(-1 * maxLookBack)
			}
			return startParam, endParam
		}
		glog.Errorf("Ignoring reversed time range params: start %v end %v", startParam, endParam)
	}

	// Find the end of the newest store partition and use that as endTime
	ok, _, maxPartition, err := tables.GetMinAndMaxPartition()
	if err != nil || !ok {
		if err != nil {
			glog.Errorf("Error getting MinAndMaxPartition: %v", err)
		}
		// Store is broken or has no data.  Best we can do is now - queryDuration
		return now.Add(-1 * queryDuration), now
	}

	_, endTimeOfNewestPartition, err := untyped.GetTimeRangeForPartition(maxPartition)
	if err != nil {
		glog.Errorf("Error getting time range for partition %v: %v", maxPartition, err)
		return now.Add(-1 * queryDuration), now
	}

	// The newest partition ends in the future, so use now instead
	if endTimeOfNewestPartition.After(now) {
		return now.Add(-1 * queryDuration), now
	}

	return endTimeOfNewestPartition.Add(-1 * queryDuration), endTimeOfNewestPartition
}
