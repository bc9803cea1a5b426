/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package processing

import (
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gantryviz/gantry/pkg/gantry/common"
	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
)

// Runner drains the build channel and writes each document into its time
// partition.  Ingress sources (file playback, the ingest endpoint) only talk
// to the channel, never to the store.
type Runner struct {
	buildChan   chan model.BuildData
	tables      typed.Tables
	inputWg     *sync.WaitGroup
	maxLookback time.Duration
}

var (
	metricProcessingBuilddocUpdatecount = promauto.NewCounter(prometheus.CounterOpts{Name: "gantry_processing_builddoc_updatecount"})
	metricIngestionFailureCount         = promauto.NewCounter(prometheus.CounterOpts{Name: "gantry_ingestion_failure_count"})
	metricIngestionSuccessCount         = promauto.NewCounter(prometheus.CounterOpts{Name: "gantry_ingestion_success_count"})
)

func NewProcessing(buildChan chan model.BuildData, tables typed.Tables, maxLookback time.Duration) *Runner {
	return &Runner{buildChan: buildChan, tables: tables, inputWg: &sync.WaitGroup{}, maxLookback: maxLookback}
}

func (r *Runner) processingFailed(name string, err error) {
	glog.Errorf("Processing for %v failed with error %v", name, err)
	metricIngestionFailureCount.Inc()
}

func (r *Runner) Start() {
	r.inputWg.Add(1)
	go func() {
		for {
			build, more := <-r.buildChan
			if !more {
				r.inputWg.Done()
				return
			}

			err := r.tables.Db().Update(func(txn badgerwrap.Txn) error {
				return updateBuildDocTable(r.tables, txn, &build, r.maxLookback)
			})
			if err != nil {
				r.processingFailed("updateBuildDocTable", err)
				continue
			}
			metricIngestionSuccessCount.Inc()
		}
	}()
}

func (r *Runner) Wait() {
	glog.Infof("Waiting for outstanding processing to finish")
	r.inputWg.Wait()
}

func updateBuildDocTable(tables typed.Tables, txn badgerwrap.Txn, build *model.BuildData, maxLookback time.Duration) error {
	if build.NodeRoot == nil {
		return errors.Errorf("build %v:%v has no node tree", build.JobName, build.BuildId)
	}
	buildStart := time.UnixMilli(build.BuildStartTimeMs)
	if time.Since(buildStart) > maxLookback {
		glog.V(common.LogLevelDebug).Infof("Dropping build %v:%v older than max lookback %v", build.JobName, build.BuildId, maxLookback)
		return nil
	}

	partitionId := untyped.GetPartitionId(buildStart)
	key := typed.NewBuildDocKey(partitionId, build.JobName, build.BuildId)
	err := tables.BuildDocTable().Set(txn, key.String(), build)
	if err != nil {
		return errors.Wrapf(err, "failed to write build %v:%v", build.JobName, build.BuildId)
	}
	metricProcessingBuilddocUpdatecount.Inc()
	return nil
}
