/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package server

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/afero"

	"github.com/gantryviz/gantry/pkg/gantry/colormap"
	"github.com/gantryviz/gantry/pkg/gantry/ingress"
	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/processing"
	"github.com/gantryviz/gantry/pkg/gantry/queries"
	"github.com/gantryviz/gantry/pkg/gantry/server/internal/config"
	"github.com/gantryviz/gantry/pkg/gantry/store/typed"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped"
	"github.com/gantryviz/gantry/pkg/gantry/store/untyped/badgerwrap"
	"github.com/gantryviz/gantry/pkg/gantry/storemanager"
	"github.com/gantryviz/gantry/pkg/gantry/webserver"
)

const alsologtostderr = "alsologtostderr"

// For easier use in e2e tests
// This is a little ugly and we may want a better solution, but if config says
// to run a single query it returns the output.  When running webserver the output is nil
func RunWithConfig(conf *config.GantryConfig) ([]byte, error) {
	err := conf.Validate()
	if err != nil {
		return []byte{}, err
	}

	palette, err := colormap.New(conf.Colors)
	if err != nil {
		return []byte{}, err
	}

	// Channel used for updates from ingress to store
	// The channel is owned by this function, and no external code should close this!
	buildChan := make(chan model.BuildData, 1000)

	var factory badgerwrap.Factory
	// Setup badger
	if conf.UseMockBadger {
		factory = &badgerwrap.MockFactory{}
	} else {
		factory = &badgerwrap.BadgerFactory{}
	}

	db, err := untyped.OpenStore(factory, conf.StoreRoot, time.Duration(1)*time.Hour)
	if err != nil {
		return []byte{}, fmt.Errorf("failed to init untyped store: %v", err)
	}
	defer untyped.CloseStore(db)

	if conf.RestoreDatabaseFile != "" {
		err = ingress.DatabaseRestore(db, conf.RestoreDatabaseFile)
		if err != nil {
			return []byte{}, fmt.Errorf("failed to restore database: %v", err)
		}
	}

	tables := typed.NewTableList(db)
	processor := processing.NewProcessing(buildChan, tables, conf.MaxLookback)
	processor.Start()

	// File playback
	if conf.DebugPlaybackFile != "" {
		err = ingress.PlayFile(buildChan, conf.DebugPlaybackFile)
		if err != nil {
			return []byte{}, fmt.Errorf("failed to play back file: %v", err)
		}
	}

	var recorder *ingress.FileRecorder
	if conf.DebugRecordFile != "" {
		recorder = ingress.NewFileRecorder(conf.DebugRecordFile, buildChan)
		recorder.Start()
	}

	var storemgr *storemanager.StoreManager
	if !conf.DisableStoreManager {
		fs := &afero.Afero{Fs: afero.NewOsFs()}
		storeCfg := &storemanager.Config{
			StoreRoot:          conf.StoreRoot,
			Freq:               conf.CleanupFrequency,
			TimeLimit:          conf.MaxLookback,
			SizeLimitBytes:     conf.MaxDiskMb * 1024 * 1024,
			BadgerDiscardRatio: conf.BadgerDiscardRatio,
			BadgerVLogGCFreq:   conf.BadgerVLogGCFreq,
			DeletionBatchSize:  conf.DeletionBatchSize,
			GCThreshold:        conf.ThresholdForGC,
		}
		storemgr = storemanager.NewStoreManager(tables, storeCfg, fs)
		storemgr.Start()
	}

	if !conf.DebugDisableWebServer && conf.DebugRunQuery == "" {
		webConfig := webserver.WebConfig{
			BindAddress:     conf.BindAddress,
			Port:            conf.Port,
			WebFilesPath:    conf.WebFilesPath,
			DefaultLookback: conf.DefaultLookback,
			DefaultPipeline: conf.DefaultPipeline,
			TitleParameter:  conf.TitleParameter,
			MaxLookback:     conf.MaxLookback,
			ConfigYaml:      conf.ToYaml(),
		}
		err = webserver.Run(webConfig, tables, palette, buildChan)
		if err != nil {
			return []byte{}, fmt.Errorf("failed to run webserver: %v", err)
		}
	}

	// Initiate shutdown with the following order:
	// 1. Close the input channel which signals processing to finish work
	// 2. Wait on processor to tell us all work is complete.  Store will not change after that
	close(buildChan)
	processor.Wait()

	if conf.DebugRunQuery != "" {
		params := url.Values(map[string][]string{
			queries.PipelineParam: {queries.AllPipelines},
			queries.LookbackParam: {conf.DefaultLookback},
		})
		queryData, err := queries.RunQuery(conf.DebugRunQuery, params, tables, palette.ColorToId(), conf.MaxLookback, "server")
		if err != nil {
			return []byte{}, fmt.Errorf("run debug query failed with: %v", err)
		}
		return queryData, nil
	}

	if recorder != nil {
		recorder.Close()
	}

	if storemgr != nil {
		storemgr.Shutdown()
	}

	glog.Infof("RunWithConfig finished")
	return []byte{}, nil
}

// By default glog will not print anything to console, which can confuse users
// This will turn it on unless user sets it explicitly (with --alsologtostderr=false)
func setupStdErrLogging() {
	for _, arg := range os.Args[1:] {
		if strings.Contains(arg, alsologtostderr) {
			return
		}
	}
	err := flag.Set("alsologtostderr", "true")
	if err != nil {
		panic(err)
	}
}

func RealMain() error {
	defer glog.Flush()
	setupStdErrLogging()

	conf := config.Init() // internally this calls flag.parse
	glog.Infof("GantryConfig: %v", conf.ToYaml())

	_, err := RunWithConfig(conf)
	return err
}
