/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

// Package colormap derives the per-interval color palette.  The configuration
// maps node-name patterns to a base color; each mode renders that color at a
// fixed saturation (alpha over a white background), so a dark bar means the
// node is running and a pale one means it is waiting.
package colormap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// DefaultColor is used for node names that match no configured pattern.
const DefaultColor = "#000000"

// How saturated to make the bar color for each mode, as an alpha from 0 to 1
// assuming a white background.
var modeSaturation = map[string]float64{
	model.ModeRunning:          1.0,
	model.ModeSleeping:         0.6,
	model.ModeWaiting:          0.6,
	model.ModeAwaitingExecutor: 0.3,
	model.ModeNotRunning:       0.0, // white
}

// Rule resolves one (name pattern, mode) pair to a blended color.
type Rule struct {
	Name  *regexp.Regexp
	Mode  string
	Color string
}

// Map is the compiled palette for one configuration.
type Map struct {
	rules     []Rule
	colorToId map[string]int
}

// New compiles the configured name-pattern to base-color assignments into the
// full palette.  Patterns are anchored the same way the config validation
// expects them to be written.
func New(colors map[string]string) (*Map, error) {
	rules := []Rule{}
	for pattern, baseColor := range colors {
		re, err := regexp.Compile("^" + pattern + "$")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid color pattern %q", pattern)
		}
		for mode, alpha := range modeSaturation {
			blended, err := Blend(baseColor, alpha)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid color %q for pattern %q", baseColor, pattern)
			}
			rules = append(rules, Rule{Name: re, Mode: mode, Color: blended})
		}
	}
	// Deterministic match order regardless of map iteration
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Name.String() != rules[j].Name.String() {
			return rules[i].Name.String() < rules[j].Name.String()
		}
		return rules[i].Mode < rules[j].Mode
	})

	return &Map{rules: rules, colorToId: internColors(rules)}, nil
}

// Blend renders a #rrggbb color at the given alpha over a white background,
// channel by channel.
func Blend(color string, alpha float64) (string, error) {
	if len(color) != 7 || color[0] != '#' {
		return "", errors.Errorf("color %q is not of the form #rrggbb", color)
	}
	channels := [3]int{}
	for i := 0; i < 3; i++ {
		c, err := strconv.ParseUint(color[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return "", errors.Wrapf(err, "color %q has a bad channel", color)
		}
		channels[i] = int(float64(c)*alpha + 255*(1-alpha))
	}
	return fmt.Sprintf("#%02x%02x%02x", channels[0], channels[1], channels[2]), nil
}

// ColorToId is the interned color table for the task document: the default
// color plus every distinct blended color, ids assigned in sorted order.
func (m *Map) ColorToId() map[string]int {
	// Copy so callers can't mutate our interning
	ret := make(map[string]int, len(m.colorToId))
	for color, id := range m.colorToId {
		ret[color] = id
	}
	return ret
}

// ColorId picks the color id for one bar of the chart.
func (m *Map) ColorId(nodeName string, mode string) int {
	for _, rule := range m.rules {
		if rule.Mode == mode && rule.Name.MatchString(nodeName) {
			return m.colorToId[rule.Color]
		}
	}
	return m.colorToId[DefaultColor]
}

func internColors(rules []Rule) map[string]int {
	distinct := map[string]bool{}
	for _, rule := range rules {
		distinct[rule.Color] = true
	}
	delete(distinct, DefaultColor)

	sorted := []string{}
	for color := range distinct {
		sorted = append(sorted, color)
	}
	sort.Strings(sorted)

	colorToId := map[string]int{DefaultColor: 0}
	for i, color := range sorted {
		colorToId[color] = i + 1
	}
	return colorToId
}
