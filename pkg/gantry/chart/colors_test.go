/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ResolveColors_SentinelRuleAlwaysFirst(t *testing.T) {
	styles := ResolveColors(map[string]int{})
	assert.Equal(t, 1, len(styles))
	assert.Equal(t, TransparentColorId, styles[0].ColorId)
	assert.True(t, styles[0].Transparent)
}

func Test_ResolveColors_SortedById(t *testing.T) {
	styles := ResolveColors(map[string]int{
		"#00008b": 2,
		"#000000": 0,
		"#8b0000": 7,
	})
	assert.Equal(t, 4, len(styles))
	assert.Equal(t, []int{TransparentColorId, 0, 2, 7}, []int{styles[0].ColorId, styles[1].ColorId, styles[2].ColorId, styles[3].ColorId})
	assert.Equal(t, "#000000", styles[1].Background)
	assert.Equal(t, "#00008b", styles[2].Background)
	assert.Equal(t, "#8b0000", styles[3].Background)
}

func Test_ResolveColors_WhiteIsTransparentAnyCase(t *testing.T) {
	styles := ResolveColors(map[string]int{"#FFFFFF": 3, "#ffffff": 4})
	for _, style := range styles {
		assert.True(t, style.Transparent, "colorId=%v", style.ColorId)
		assert.Equal(t, "", style.Background)
	}
}

func Test_ResolveColors_UnrecognizedStringPassesThrough(t *testing.T) {
	styles := ResolveColors(map[string]int{"rebeccapurple": 1})
	assert.Equal(t, "rebeccapurple", styles[1].Background)
	assert.False(t, styles[1].Transparent)
}

func Test_knownColorIds_IncludesSentinel(t *testing.T) {
	known := knownColorIds(map[string]int{"#00008b": 5})
	assert.True(t, known[TransparentColorId])
	assert.True(t, known[5])
	assert.False(t, known[6])
}
