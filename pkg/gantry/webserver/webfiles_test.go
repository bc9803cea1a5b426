/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package webserver

import (
	"os"
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

const (
	defaultFileMode = os.FileMode(0755)
	someContents    = "body { color: red }"
)

func helper_writeWebfile(t *testing.T, fs *afero.Afero, filePath string, content string) {
	err := fs.MkdirAll(path.Dir(filePath), defaultFileMode)
	assert.Nil(t, err)
	err = fs.WriteFile(filePath, []byte(content), defaultFileMode)
	assert.Nil(t, err)
}

func Test_readWebfile_ReturnsContents(t *testing.T) {
	fs := &afero.Afero{Fs: afero.NewMemMapFs()}
	helper_writeWebfile(t, fs, "webfiles/gantry.css", someContents)

	data, err := readWebfile("webfiles/gantry.css", fs)
	assert.Nil(t, err)
	assert.Equal(t, someContents, string(data))
}

func Test_readWebfile_MissingFileFails(t *testing.T) {
	fs := &afero.Afero{Fs: afero.NewMemMapFs()}
	_, err := readWebfile("webfiles/nope.css", fs)
	assert.NotNil(t, err)
}

func Test_readWebfile_DotDotRejected(t *testing.T) {
	fs := &afero.Afero{Fs: afero.NewMemMapFs()}
	helper_writeWebfile(t, fs, "secrets/key.pem", someContents)

	_, err := readWebfile("webfiles/../secrets/key.pem", fs)
	assert.NotNil(t, err)
}

func Test_getTemplate_ParsesAndExecutes(t *testing.T) {
	webFiles = "webfiles"
	fs := &afero.Afero{Fs: afero.NewMemMapFs()}
	helper_writeWebfile(t, fs, "webfiles/index.html", "lookback={{.DefaultLookback}}")

	tmpl, err := getTemplate("index.html", fs)
	assert.Nil(t, err)
	assert.NotNil(t, tmpl)
}

func Test_getTemplate_BadTemplateFails(t *testing.T) {
	webFiles = "webfiles"
	fs := &afero.Afero{Fs: afero.NewMemMapFs()}
	helper_writeWebfile(t, fs, "webfiles/broken.html", "{{range}}")

	_, err := getTemplate("broken.html", fs)
	assert.NotNil(t, err)
}
