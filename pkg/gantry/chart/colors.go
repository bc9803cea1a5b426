/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package chart

import (
	"sort"
	"strings"
)

// TransparentColorId is the sentinel id used by synthetic intervals and any
// interval whose semantic color is "no information".
const TransparentColorId = -1

const whiteColor = "#ffffff"

// Style describes how to fill the segments carrying one color id.  The
// display collaborator owns applying it; the core never emits raw markup for
// styling.
type Style struct {
	ColorId     int    `json:"colorId"`
	Background  string `json:"background"`
	Transparent bool   `json:"transparent"`
}

// ResolveColors interns the document's color map into one style per id,
// sorted by id, plus the fixed rule for the transparent sentinel.  White is
// treated as transparent so the background grid shows through it.  Strings
// that don't look like colors pass through as raw fill values; that is a
// caller mistake surfaced only visually.
func ResolveColors(colorToId map[string]int) []Style {
	styles := make([]Style, 0, len(colorToId)+1)
	styles = append(styles, Style{ColorId: TransparentColorId, Transparent: true})

	for color, id := range colorToId {
		if strings.EqualFold(color, whiteColor) {
			styles = append(styles, Style{ColorId: id, Transparent: true})
		} else {
			styles = append(styles, Style{ColorId: id, Background: color})
		}
	}

	sort.Slice(styles, func(i, j int) bool { return styles[i].ColorId < styles[j].ColorId })
	return styles
}

// knownColorIds is the set of ids an interval may legally reference.
func knownColorIds(colorToId map[string]int) map[int]bool {
	known := map[int]bool{TransparentColorId: true}
	for _, id := range colorToId {
		known[id] = true
	}
	return known
}
