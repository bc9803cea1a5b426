/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package typed

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/gantryviz/gantry/pkg/gantry/model"
)

// Stored values are zstd-compressed json.  Build documents compress well
// because interval records repeat the same field names over and over.

var zstdEncoder, _ = zstd.NewWriter(nil)
var zstdDecoder, _ = zstd.NewReader(nil)

func encodeBuildDoc(value *model.BuildData) ([]byte, error) {
	plain, err := value.ToJson()
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(plain, nil), nil
}

func decodeBuildDoc(data []byte) (*model.BuildData, error) {
	plain, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd decompress failed")
	}
	return model.BuildFromJson(plain)
}
