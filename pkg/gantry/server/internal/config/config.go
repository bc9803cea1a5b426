/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const gantryConfigEnvVar = "GANTRY_CONFIG"

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type GantryConfig struct {
	// These fields can only come from command line or flag args
	ConfigFile string `json:"config"`
	// These fields can only come from file because they use complex types
	Colors map[string]string `json:"colors"`
	// Normal fields that can come from file or cmd line
	TitleParameter        string        `json:"title-parameter"`
	WebFilesPath          string        `json:"webfiles-path"`
	BindAddress           string        `json:"bind-address"`
	Port                  int           `json:"port"`
	StoreRoot             string        `json:"store-root"`
	MaxLookback           time.Duration `json:"max-look-back"`
	MaxDiskMb             int           `json:"max-disk-mb"`
	DebugPlaybackFile     string        `json:"playback-file"`
	DebugRecordFile       string        `json:"record-file"`
	DebugRunQuery         string        `json:"run-query"`
	DebugDisableWebServer bool          `json:"disable-web-server"`
	DeletionBatchSize     int           `json:"deletion-batch-size"`
	UseMockBadger         bool          `json:"use-mock-badger"`
	DisableStoreManager   bool          `json:"disable-store-manager"`
	CleanupFrequency      time.Duration `json:"cleanup-frequency" validate:"min=1h,max=120h"`
	DefaultLookback       string        `json:"default-lookback"`
	DefaultPipeline       string        `json:"default-pipeline"`
	ThresholdForGC        float64       `json:"gc-threshold"`
	RestoreDatabaseFile   string        `json:"restore-database-file"`
	BadgerDiscardRatio    float64       `json:"badger-discard-ratio"`
	BadgerVLogGCFreq      time.Duration `json:"badger-vlog-gc-freq"`
}

func registerDefaultFlags(fs *flag.FlagSet, config *GantryConfig) {
	fs.StringVar(&config.ConfigFile, "config", "", "Path to a yaml or json config file")
	fs.StringVar(&config.TitleParameter, "title-parameter", "RELEASE", "Build parameter used as the display title for a build")
	fs.StringVar(&config.WebFilesPath, "web-files-path", "./pkg/gantry/webserver/webfiles", "Path to web files")
	fs.StringVar(&config.BindAddress, "bind-address", "", "Web server bind ip address.")
	fs.IntVar(&config.Port, "port", 8080, "Web server port")
	fs.StringVar(&config.StoreRoot, "store-root", "./data", "Path to store history data")
	fs.DurationVar(&config.MaxLookback, "max-look-back", time.Duration(14*24)*time.Hour, "Max history data to keep")
	fs.IntVar(&config.MaxDiskMb, "max-disk-mb", 32*1024, "Max disk storage in MB")
	fs.StringVar(&config.DebugPlaybackFile, "playback-file", "", "Read build data from a playback file")
	fs.StringVar(&config.DebugRecordFile, "record-file", "", "Record ingested build data to a playback file")
	fs.StringVar(&config.DebugRunQuery, "run-query", "", "Run a single query and print the result instead of starting the web server")
	fs.BoolVar(&config.DebugDisableWebServer, "disable-web-server", false, "Turn off the web server")
	fs.BoolVar(&config.UseMockBadger, "use-mock-badger", false, "Use a fake in-memory mock of badger")
	fs.BoolVar(&config.DisableStoreManager, "disable-store-manager", false, "Turn off store manager which is to clean up database")
	fs.DurationVar(&config.CleanupFrequency, "cleanup-frequency", time.Minute*30, "Frequency between subsequent runs for the database cleanup")
	fs.StringVar(&config.DefaultLookback, "default-lookback", "1h", "Default UX filter lookback")
	fs.StringVar(&config.DefaultPipeline, "default-pipeline", "_all", "Default UX pipeline filter")
	fs.IntVar(&config.DeletionBatchSize, "deletion-batch-size", 1000, "Size of batch for deletion")
	fs.StringVar(&config.RestoreDatabaseFile, "restore-database-file", "", "Restore database from backup file into the store.")
	fs.Float64Var(&config.BadgerDiscardRatio, "badger-discard-ratio", 0.99, "Badger value log GC uses this value to decide if it wants to compact a vlog file. The lower the value of discardRatio the higher the number of !badger!move keys. And thus more the number of !badger!move keys, the size on disk keeps on increasing over time.")
	fs.Float64Var(&config.ThresholdForGC, "gc-threshold", 0.8, "Threshold for GC to start garbage collecting")
	fs.DurationVar(&config.BadgerVLogGCFreq, "badger-vlog-gc-freq", time.Minute*1, "Frequency of running badger's ValueLogGC")
}

// This will first check if a config file is specified on cmd line using a temporary flagSet
// If not there, check the environment variable
// If we have a config path, load initial values from it
// Next parse flags again and override any fields from command line
//
// We do this to support settings that can come from either cmd line or config file
func Init() *GantryConfig {
	finalConfig := &GantryConfig{}
	registerDefaultFlags(flag.CommandLine, finalConfig)

	configFileName := ""
	configFileFlag := preParseConfigFlag()
	configFileOS := os.Getenv(gantryConfigEnvVar)

	if configFileFlag != "" {
		configFileName = configFileFlag
		glog.Infof("Config flag: %s", configFileFlag)
	} else if configFileOS != "" {
		configFileName = configFileOS
		glog.Infof("Config env: %s", configFileOS)
	}

	if configFileName != "" {
		finalConfig = loadFromFile(configFileName, finalConfig)
	}
	//register cmd line args
	flag.Parse()
	// Set this to the correct value in case we got it from envVar
	finalConfig.ConfigFile = configFileName
	return finalConfig
}

func (c *GantryConfig) ToYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func (c *GantryConfig) Validate() error {
	if c.MaxLookback <= 0 {
		return fmt.Errorf("GantryConfig value MaxLookback can not be <= 0")
	}
	if c.DefaultLookback == "" {
		return fmt.Errorf("DefaultLookback can not be empty string")
	}
	_, err := time.ParseDuration(c.DefaultLookback)
	if err != nil {
		return errors.Wrapf(err, "DefaultLookback is an invalid duration: %v", c.DefaultLookback)
	}
	if c.CleanupFrequency < time.Minute*15 {
		return fmt.Errorf("CleanupFrequency can not be less than 15 minutes.  Badger is lazy about freeing space " +
			"on disk so we need to give it time to avoid over-correction")
	}
	for pattern, color := range c.Colors {
		if !colorRe.MatchString(color) {
			return fmt.Errorf("color for pattern %q must look like #rrggbb, got %q", pattern, color)
		}
		_, err = regexp.Compile("^" + pattern + "$")
		if err != nil {
			return errors.Wrapf(err, "color pattern %q is not a valid regular expression", pattern)
		}
	}
	return nil
}

func loadFromFile(filename string, config *GantryConfig) *GantryConfig {
	configFile, err := ioutil.ReadFile(filename)
	if err != nil {
		panic(fmt.Sprintf("failed to read %v. %v", filename, err))
	}

	if strings.Contains(filename, ".yaml") {
		err = yaml.Unmarshal(configFile, &config)
	} else if strings.Contains(filename, ".json") {
		err = json.Unmarshal(configFile, &config)
	} else {
		panic(fmt.Sprintf("incorrect file format %v. Use json or yaml file type. ", filename))
	}

	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal %v. %v", filename, err))
	}
	return config
}

// Pre-parse flags and return config filename without side-effects
func preParseConfigFlag() string {
	tempCfg := &GantryConfig{}
	fs := flag.NewFlagSet("configFileOnly", flag.ContinueOnError)
	registerDefaultFlags(fs, tempCfg)
	registerDummyGlogFlags(fs)
	err := fs.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("Failed to pre-parse flags looking for config file: %v\n", err)
	}
	return tempCfg.ConfigFile
}

// The gflags library registers flags in init() in github.com/golang/glog.go but only using the global flag set
// We need to also register them in our temporary flagset so we dont get an error about "flag provided but not
// defined".  We dont care what the values are.
func registerDummyGlogFlags(fs *flag.FlagSet) {
	fs.Bool("logtostderr", false, "log to standard error instead of files")
	fs.Bool("alsologtostderr", false, "log to standard error as well as files")
	fs.Int("v", 0, "log level for V logs")
	fs.Int("stderrthreshold", 0, "logs at or above this threshold go to stderr")
	fs.String("vmodule", "", "comma-separated list of pattern=N settings for file-filtered logging")
	fs.String("log_backtrace_at", "", "when logging hits line file:N, emit a stack trace")
}
