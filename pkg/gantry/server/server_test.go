/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package server

import (
	"io/ioutil"
	"path"
	"testing"
	"time"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"

	"github.com/gantryviz/gantry/pkg/gantry/ingress"
	"github.com/gantryviz/gantry/pkg/gantry/model"
	"github.com/gantryviz/gantry/pkg/gantry/server/internal/config"
)

func helper_testConfig(t *testing.T) *config.GantryConfig {
	return &config.GantryConfig{
		UseMockBadger:       true,
		DisableStoreManager: true,
		StoreRoot:           t.TempDir(),
		MaxLookback:         14 * 24 * time.Hour,
		DefaultLookback:     "1h",
		CleanupFrequency:    30 * time.Minute,
		TitleParameter:      "RELEASE",
		Colors:              map[string]string{"build": "#00008b"},
	}
}

func Test_RunWithConfig_RunsSingleQuery(t *testing.T) {
	conf := helper_testConfig(t)
	conf.DebugRunQuery = "Queries"

	data, err := RunWithConfig(conf)
	assert.Nil(t, err)
	assert.Contains(t, string(data), "ChartLayout")
}

func Test_RunWithConfig_InvalidConfigFails(t *testing.T) {
	conf := helper_testConfig(t)
	conf.MaxLookback = 0

	_, err := RunWithConfig(conf)
	assert.NotNil(t, err)
}

func Test_RunWithConfig_PlaybackFeedsQueries(t *testing.T) {
	buildStart := time.Now().Add(-10 * time.Minute)
	playback := ingress.BuildPlaybackFile{
		Data: []model.BuildData{
			{
				JobName:          "deploy/build-webapp",
				BuildId:          "1543",
				Title:            "228",
				BuildStartTimeMs: buildStart.UnixMilli(),
				BuildEndTimeMs:   buildStart.Add(5 * time.Minute).UnixMilli(),
				NodeRoot:         &model.Node{Name: "<deploy:1543>"},
			},
		},
	}
	byteData, err := yaml.Marshal(playback)
	assert.Nil(t, err)
	filename := path.Join(t.TempDir(), "playback.yaml")
	err = ioutil.WriteFile(filename, byteData, 0755)
	assert.Nil(t, err)

	conf := helper_testConfig(t)
	conf.DebugPlaybackFile = filename
	conf.DebugRunQuery = "Builds"

	data, err := RunWithConfig(conf)
	assert.Nil(t, err)
	assert.Contains(t, string(data), "deploy/build-webapp")
}
