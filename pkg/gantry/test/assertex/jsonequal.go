/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package assertex

import (
	"fmt"
	"testing"

	"github.com/nsf/jsondiff"
)

// Similar to assert.JSONEq() but prints the full actual string without
// transformed line-breaks, so it is easy to copy the output back into source
// code, and shows a combined diff instead of two dumps.  Chart layouts are
// big nested documents, which makes the combined diff much easier to read.

func JsonEqualBytes(t *testing.T, expectedByte []byte, actualByte []byte) {
	diff, diffString := jsondiff.Compare(expectedByte, actualByte, &jsondiff.Options{})
	if diff != jsondiff.FullMatch {
		fmt.Printf("Diff:%v\n", diff.String())
		fmt.Printf("## EXPECTED:\n%v\n", string(expectedByte))
		fmt.Printf("## ACTUAL:\n%v\n", string(actualByte))
		fmt.Printf("## DIFF:\n%v", diffString)
		t.Fail()
	}
}

func JsonEqual(t *testing.T, expectedStr string, actualStr string) {
	JsonEqualBytes(t, []byte(expectedStr), []byte(actualStr))
}
