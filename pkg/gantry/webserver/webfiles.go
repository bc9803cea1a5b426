/*
 * Copyright (c) 2019, salesforce.com, inc.
 * All rights reserved.
 * SPDX-License-Identifier: BSD-3-Clause
 * For full license text, see LICENSE.txt file in the repo root or https://opensource.org/licenses/BSD-3-Clause
 */

package webserver

import (
	"html/template"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// readWebfile returns the contents of one file under the web files root.
// Paths with ".." are rejected so a request can not escape the root.
func readWebfile(filePath string, fs *afero.Afero) ([]byte, error) {
	if strings.Contains(filePath, "..") {
		return nil, errors.Errorf("web file path %v is not allowed", filePath)
	}
	data, err := fs.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read web file %v", filePath)
	}
	return data, nil
}

// getTemplate reads templateName from the web files root and parses it.
// Example input: templateName = "index.html"
func getTemplate(templateName string, fs *afero.Afero) (*template.Template, error) {
	data, err := readWebfile(path.Join(webFiles, templateName), fs)
	if err != nil {
		return nil, err
	}
	newTemplate, err := template.New(templateName).Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %v", templateName)
	}
	return newTemplate, nil
}
