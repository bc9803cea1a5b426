/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package typed

import (
	"fmt"
	"strings"

	"github.com/gantryviz/gantry/pkg/gantry/common"
)

// Key is /builddoc/<partition>/<pipeline>/<buildid>
//
// Partition is UnixSeconds of the build start rounded down to partition duration
// Pipeline is the pipeline (job) name, e.g. deploy/build-webapp
// BuildId is the build number within that pipeline
//
// Pipeline names can contain slashes, so they are stored with slashes folded
// to dashes, matching how data files name downloaded builds.

type BuildDocKey struct {
	PartitionId string
	Pipeline    string
	BuildId     string
}

func NewBuildDocKey(partitionId string, pipeline string, buildId string) *BuildDocKey {
	return &BuildDocKey{PartitionId: partitionId, Pipeline: FoldPipelineName(pipeline), BuildId: buildId}
}

// FoldPipelineName rewrites a pipeline name into its key form.
func FoldPipelineName(pipeline string) string {
	return strings.ReplaceAll(pipeline, "/", "--")
}

func (_ *BuildDocKey) TableName() string {
	return "builddoc"
}

func (k *BuildDocKey) Parse(key string) error {
	err, parts := common.ParseKey(key)
	if err != nil {
		return err
	}
	if parts[1] != k.TableName() {
		return fmt.Errorf("second part of key (%v) should be %v", key, k.TableName())
	}
	k.PartitionId = parts[2]
	k.Pipeline = parts[3]
	k.BuildId = parts[4]
	return nil
}

func (k *BuildDocKey) SetPartitionId(newPartitionId string) {
	k.PartitionId = newPartitionId
}

func (k *BuildDocKey) String() string {
	if k.BuildId == "" {
		return fmt.Sprintf("/%v/%v/%v/", k.TableName(), k.PartitionId, k.Pipeline)
	}
	return fmt.Sprintf("/%v/%v/%v/%v", k.TableName(), k.PartitionId, k.Pipeline, k.BuildId)
}

func (_ *BuildDocKey) ValidateKey(key string) error {
	newKey := BuildDocKey{}
	return newKey.Parse(key)
}
