// Copyright 2009 The Go Authors. All rights reserved.
//
// Changes Copyright 2012, Sudhi Herle <sudhi -at- herle.net>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunValidateConfigReportsLoggers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs.conf")
	require.NoError(t, os.WriteFile(path, []byte(`logger app {
destination = stdout
format = %m
}
`), 0644))

	require.NoError(t, runValidateConfig(validateConfigCmd, []string{path}))
}

func TestRunValidateConfigSurfacesSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs.conf")
	require.NoError(t, os.WriteFile(path, []byte(`logger app {
destination
}
`), 0644))

	err := runValidateConfig(validateConfigCmd, []string{path})
	require.Error(t, err)
}

func TestRunValidateConfigMissingFile(t *testing.T) {
	err := runValidateConfig(validateConfigCmd, []string{filepath.Join(t.TempDir(), "missing.conf")})
	require.Error(t, err)
}
