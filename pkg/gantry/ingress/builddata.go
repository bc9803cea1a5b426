/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package ingress

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/colormap"
	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// Build pages carry parameters as a javascript literal which happens to be
// valid JSON.
var buildParametersRe = regexp.MustCompile(`<script>\s*var parameters = (\{.*?\})\s*</script>`)

// ParseBuildParameters extracts the build parameters embedded in a build
// page.  Only scalar-valued parameters are kept; nested structures from
// plugins aren't something we title or group builds by.
func ParseBuildParameters(buildHtml string) (map[string]string, error) {
	m := buildParametersRe.FindStringSubmatch(buildHtml)
	if m == nil {
		return map[string]string{}, nil
	}
	return parametersFromJson([]byte(m[1]))
}

func parametersFromJson(paramsJson []byte) (map[string]string, error) {
	container, err := gabs.ParseJSON(paramsJson)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse build parameters")
	}
	params := map[string]string{}
	for key, child := range container.ChildrenMap() {
		switch value := child.Data().(type) {
		case string:
			params[key] = value
		case bool:
			params[key] = fmt.Sprintf("%v", value)
		case float64:
			params[key] = fmt.Sprintf("%v", value)
		}
	}
	return params, nil
}

// BuildDocument assembles the storable document for one finished build from
// its coalesced node tree.  Node times are relative to the build start; the
// document carries wall-clock times.
func BuildDocument(
	palette *colormap.Map,
	titleParameter string,
	jobName string,
	buildId string,
	buildStartTime time.Time,
	parameters map[string]string,
	root *BuildNode) (model.BuildData, error) {
	if root == nil {
		return model.BuildData{}, errors.New("build has no node tree")
	}

	buildStartMs := buildStartTime.UnixMilli()
	if root.Name == "" {
		root.Name = fmt.Sprintf("<%v:%v>", jobName, buildId)
	}
	nodeRoot := toModelNode(palette, buildStartMs, root)

	title := parameters[titleParameter]
	if title == "" {
		title = fmt.Sprintf("%v %v", jobName, buildId)
	}

	return model.BuildData{
		JobName:          jobName,
		BuildId:          buildId,
		Title:            title,
		Parameters:       parameters,
		BuildStartTimeMs: buildStartMs,
		BuildEndTimeMs:   buildStartMs + latestEnd(root),
		NodeRoot:         nodeRoot,
	}, nil
}

func toModelNode(palette *colormap.Map, buildStartMs int64, node *BuildNode) *model.Node {
	out := &model.Node{Name: node.Name}
	for _, r := range node.ranges {
		out.Intervals = append(out.Intervals, model.Interval{
			StartTimeMs:                   buildStartMs + r.startMs,
			EndTimeMs:                     buildStartMs + r.endMs,
			Mode:                          r.mode,
			ColorId:                       palette.ColorId(node.Name, r.mode),
			TimeRangeRelativeToBuildStart: formatTimeRange(buildStartMs, r),
		})
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, toModelNode(palette, buildStartMs, child))
	}
	return out
}

// Tooltip text, e.g. "2019/01/02:03:04:05 - 03:05:15 (70.00s)".
func formatTimeRange(buildStartMs int64, r timeRange) string {
	start := time.UnixMilli(buildStartMs + r.startMs).UTC()
	end := time.UnixMilli(buildStartMs + r.endMs).UTC()
	return fmt.Sprintf("%v - %v (%.2fs)",
		start.Format("2006/01/02:15:04:05"),
		end.Format("15:04:05"),
		float64(r.endMs-r.startMs)/1000)
}

func latestEnd(node *BuildNode) int64 {
	var latest int64
	for _, r := range node.ranges {
		if r.endMs > latest {
			latest = r.endMs
		}
	}
	for _, child := range node.Children {
		if end := latestEnd(child); end > latest {
			latest = end
		}
	}
	return latest
}

// IngestBuild turns a raw flowGraphTable page straight into a build
// document.  This is the path behind the ingest endpoint.
func IngestBuild(
	palette *colormap.Map,
	titleParameter string,
	jobName string,
	buildId string,
	buildStartTime time.Time,
	parameters map[string]string,
	stepHtml string) (model.BuildData, error) {
	rootStep, err := ParsePipelineSteps(stepHtml)
	if err != nil {
		return model.BuildData{}, errors.Wrapf(err, "failed to parse steps for %v/%v", jobName, buildId)
	}
	rootNode := StepsToNodes(rootStep)
	return BuildDocument(palette, titleParameter, jobName, buildId, buildStartTime, parameters, rootNode)
}
