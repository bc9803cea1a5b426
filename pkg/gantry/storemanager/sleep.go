/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package storemanager

import (
	"context"
	"time"
)

// The cleanup and value-log GC loops pause between passes but need to wake
// promptly on shutdown.  After Wake all future sleeps return immediately.

type wakeableSleep struct {
	ctx  context.Context
	wake context.CancelFunc
}

func newWakeableSleep() *wakeableSleep {
	ctx, cancel := context.WithCancel(context.Background())
	return &wakeableSleep{ctx: ctx, wake: cancel}
}

func (s *wakeableSleep) Sleep(after time.Duration) {
	timer := time.NewTimer(after)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
	case <-timer.C:
	}
}

func (s *wakeableSleep) Wake() {
	s.wake()
}
