/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package chart

import "github.com/pkg/errors"

// Input contract violations.  A render either succeeds whole or fails whole;
// we never return a partial chart because a silently wrong timeline is worse
// than a visible failure for a performance diagnosis tool.  Callers can test
// for these with errors.Is.
var (
	ErrInvalidDuration   = errors.New("task duration must be a positive number of milliseconds")
	ErrEmptyIntervalList = errors.New("node must have at least one interval")
	ErrMalformedColorId  = errors.New("interval references a color id missing from colorToId")
)
