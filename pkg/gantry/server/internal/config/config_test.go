/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package config

import (
	"io/ioutil"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func helper_validConfig() *GantryConfig {
	return &GantryConfig{
		MaxLookback:      14 * 24 * time.Hour,
		DefaultLookback:  "1h",
		CleanupFrequency: 30 * time.Minute,
		Colors: map[string]string{
			"build":   "#00008b",
			"test-.*": "#8b0000",
		},
	}
}

func Test_Validate_GoodConfigPasses(t *testing.T) {
	assert.Nil(t, helper_validConfig().Validate())
}

func Test_Validate_BadMaxLookbackFails(t *testing.T) {
	conf := helper_validConfig()
	conf.MaxLookback = 0
	assert.NotNil(t, conf.Validate())
}

func Test_Validate_BadDefaultLookbackFails(t *testing.T) {
	conf := helper_validConfig()
	conf.DefaultLookback = "potato"
	assert.NotNil(t, conf.Validate())
}

func Test_Validate_ShortCleanupFrequencyFails(t *testing.T) {
	conf := helper_validConfig()
	conf.CleanupFrequency = time.Minute
	assert.NotNil(t, conf.Validate())
}

func Test_Validate_BadColorFails(t *testing.T) {
	conf := helper_validConfig()
	conf.Colors["build"] = "blue"
	assert.NotNil(t, conf.Validate())
}

func Test_Validate_BadColorPatternFails(t *testing.T) {
	conf := helper_validConfig()
	conf.Colors["(unclosed"] = "#00008b"
	assert.NotNil(t, conf.Validate())
}

func Test_loadFromFile_Yaml(t *testing.T) {
	filename := path.Join(t.TempDir(), "testconfig.yaml")
	body := "port: 9090\ntitle-parameter: BUILD_TAG\ncolors:\n  build: \"#00008b\"\n"
	err := ioutil.WriteFile(filename, []byte(body), 0644)
	assert.Nil(t, err)

	conf := loadFromFile(filename, &GantryConfig{Port: 8080})
	assert.Equal(t, 9090, conf.Port)
	assert.Equal(t, "BUILD_TAG", conf.TitleParameter)
	assert.Equal(t, "#00008b", conf.Colors["build"])
}

func Test_loadFromFile_Json(t *testing.T) {
	filename := path.Join(t.TempDir(), "testconfig.json")
	body := `{"port": 9191, "default-pipeline": "deploy"}`
	err := ioutil.WriteFile(filename, []byte(body), 0644)
	assert.Nil(t, err)

	conf := loadFromFile(filename, &GantryConfig{})
	assert.Equal(t, 9191, conf.Port)
	assert.Equal(t, "deploy", conf.DefaultPipeline)
}

func Test_ToYaml_RoundTripsFields(t *testing.T) {
	conf := helper_validConfig()
	out := conf.ToYaml()
	assert.Contains(t, out, "default-lookback: 1h")
	assert.Contains(t, out, "test-.*")
}
