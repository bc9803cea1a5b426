/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package ingress

import (
	"io/ioutil"

	"github.com/ghodss/yaml"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// BuildPlaybackFile is the on-disk format for recorded build documents.
// Useful for seeding a dev instance without a Jenkins to ingest from.
type BuildPlaybackFile struct {
	Data []model.BuildData `json:"data"`
}

func PlayFile(outChan chan model.BuildData, filename string) error {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to read playback file %v", filename)
	}
	var playbackFile BuildPlaybackFile
	err = yaml.Unmarshal(b, &playbackFile)
	if err != nil {
		return errors.Wrapf(err, "failed to unmarshal playback file %v", filename)
	}

	glog.Infof("Loaded %v builds from file source %v", len(playbackFile.Data), filename)

	for _, buildRecord := range playbackFile.Data {
		outChan <- buildRecord
	}
	glog.Infof("Done writing builds to channel")
	return nil
}
