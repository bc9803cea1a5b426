/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

// Package ingress turns already-downloaded Jenkins pipeline data into build
// documents and feeds them to the store.  Talking to Jenkins itself (fetch,
// auth) is out of scope; we only consume pages something else saved to disk
// or posted to the ingest endpoint.
package ingress

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A step is a single pipeline command (sh(), parallel(), stage(), ...) and
// also a single row of the flowGraphTable ("Pipeline steps") page.  Steps
// with bodies contain other steps, which yields an execution tree.

var stepRowRe = regexp.MustCompile(
	`<td style="padding-left: calc\(var\(--table-padding\) \* (?P<indent>\d+)\)">` +
		`\s*<a tooltip="ID: (?P<id>\d+)" [^>]*>` +
		`\s*(?P<stepText>[^<]*)` +
		`\s*</a>` +
		`\s*</td>`)

var elapsedTimeRe = regexp.MustCompile(
	`(?:([\d.]+) min )?` +
		`(?:([\d.]+) sec )?` +
		`(?:([\d.]+) ms )?` +
		`in (block|self)`)

var branchRe = regexp.MustCompile(`\(Branch: ([^)]*)\)`)    // text within parallel()
var stageRe = regexp.MustCompile(`stage block \(([^)]*)\)`) // text for stage()

const (
	waitUntilText = "waitUntil - " // pipeline text for waitUntil()
	promptText    = "input - "     // pipeline text for prompt()
	sleepText     = "sleep - "     // pipeline text for sleep()
	nodeText      = "node - "      // pipeline text for node()
	parallelText  = "parallel - "  // pipeline text for parallel()
)

// Step holds the information we need from one executed pipeline step.
type Step struct {
	// Integer id for the step, assigned by Jenkins
	Id int
	// Indentation in the html table, used to infer the tree structure
	Indent int

	Parent   *Step
	Children []*Step

	IsWaiting        bool // waitUntil() or prompt()
	IsSleeping       bool // sleep()
	IsNewWorker      bool // allocating a new worker machine via node()
	IsNewStage       bool // stage()
	IsParallelParent bool // children run in parallel
	IsBranchStep     bool // a named branch inside a parallel()

	// The node name, e.g. 'determine-splits'.  Inherited from the parent
	// when this step doesn't start a new stage or branch.
	Name string

	ElapsedTimeMs int64
	StartTimeMs   int64
}

// HasNewName reports whether this step begins a new display node.
func (s *Step) HasNewName() bool {
	return s.Parent == nil || s.Name != s.Parent.Name
}

func newStep(id int, indent int, stepText string, previousSteps []*Step) *Step {
	s := &Step{Id: id, Indent: indent}

	s.Parent = findParent(indent, previousSteps)
	if s.Parent != nil {
		s.Parent.Children = append(s.Parent.Children, s)
	}

	s.IsWaiting = strings.Contains(stepText, waitUntilText) || strings.Contains(stepText, promptText)
	s.IsSleeping = strings.Contains(stepText, sleepText)
	s.IsNewWorker = strings.Contains(stepText, nodeText)
	s.IsNewStage = stageRe.MatchString(stepText)
	s.IsParallelParent = strings.Contains(stepText, parallelText)
	s.IsBranchStep = branchRe.MatchString(stepText)

	s.Name = stepName(s, stepText)
	s.ElapsedTimeMs = elapsedTime(stepText)
	s.StartTimeMs = startTime(s)
	return s
}

// Find the parent based on indentation: the nearest earlier row indented
// less than ours.  Indentation 0 means no parent.
func findParent(indent int, previousSteps []*Step) *Step {
	for i := len(previousSteps) - 1; i >= 0; i-- {
		if previousSteps[i].Indent < indent {
			return previousSteps[i]
		}
	}
	return nil
}

// We start a new name when starting a named branch of a parallel() or a new
// stage().  Otherwise we inherit the parent's name.
func stepName(s *Step, stepText string) string {
	if s.IsBranchStep {
		return branchRe.FindStringSubmatch(stepText)[1]
	}
	if s.IsNewStage {
		return stageRe.FindStringSubmatch(stepText)[1]
	}
	if s.Parent != nil {
		return s.Parent.Name
	}
	return ""
}

// The text says "a.b sec in block", "a.b min c.d sec in self", "a ms in
// block" and so on.
//
// NOTE: due to a Jenkins bug the elapsed time is wrong for "Branch:" steps
// (they should be treated like blocks but aren't).  That can't be fixed
// until all children are known, so ParsePipelineSteps patches it afterwards.
func elapsedTime(stepText string) int64 {
	m := elapsedTimeRe.FindStringSubmatch(stepText)
	if m == nil {
		return 0
	}
	elapsed := parseFloatOrZero(m[1]) * 60000 // min
	elapsed += parseFloatOrZero(m[2]) * 1000  // sec
	elapsed += parseFloatOrZero(m[3])         // ms
	return int64(elapsed)
}

func parseFloatOrZero(text string) float64 {
	if text == "" {
		return 0
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return value
}

// Start times are dead-reckoned: when our parent started, plus however long
// our prior siblings ran.  The root therefore starts at time 0, and all step
// times are relative to the build start.
func startTime(s *Step) int64 {
	if s.Parent == nil {
		return 0
	}
	if s.Parent.IsParallelParent {
		// A "parallel" step just holds a bunch of children, all of which
		// start at the same time as it
		return s.Parent.StartTimeMs
	}
	if s.Parent.IsNewWorker {
		// There's no pipeline step for how long an "allocate node" step
		// waited for an executor, so our dead-reckoned start wouldn't
		// account for that wait.  We and our parent share an end time by
		// construction, so derive the start from that instead.
		return s.Parent.StartTimeMs + s.Parent.ElapsedTimeMs - s.ElapsedTimeMs
	}

	start := s.Parent.StartTimeMs
	for _, sibling := range s.Parent.Children {
		if sibling != s {
			start += sibling.ElapsedTimeMs
		}
	}
	return start
}

// ParsePipelineSteps parses a flowGraphTable html page into the execution
// tree of steps.
func ParsePipelineSteps(stepHtml string) (*Step, error) {
	steps := []*Step{}
	for _, m := range stepRowRe.FindAllStringSubmatch(stepHtml, -1) {
		id, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, errors.Wrapf(err, "bad step id %q", m[2])
		}
		indent, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, errors.Wrapf(err, "bad step indent %q", m[1])
		}
		stepText := html.UnescapeString(strings.TrimSpace(m[3]))
		steps = append(steps, newStep(id, indent, stepText, steps))
	}

	if len(steps) == 0 {
		return nil, errors.New("no pipeline steps found in page")
	}

	// Patch over the elapsed-time bug for "Branch:" steps
	for _, step := range steps {
		if step.IsBranchStep {
			var childTotal int64
			for _, child := range step.Children {
				childTotal += child.ElapsedTimeMs
			}
			step.ElapsedTimeMs = childTotal
		}
	}

	return steps[0], nil
}
