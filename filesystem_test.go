// Copyright 2023 Linka Cloud  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package alma

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.linka.cloud/alma/pkg/exec"
)

type fakeDevice struct {
	path string
}

func (f *fakeDevice) Path() string {
	return f.path
}

func TestFormatArgs(t *testing.T) {
	tests := []struct {
		fs   FilesystemType
		args []string
	}{
		{fs: Ext4, args: []string{"-F", "/dev/sdb3"}},
		{fs: Vfat, args: []string{"-F32", "/dev/sdb3"}},
		{fs: F2FS, args: []string{"-f", "/dev/sdb3"}},
	}
	for _, test := range tests {
		t.Run(test.fs.String(), func(t *testing.T) {
			r := record(t, nil)
			dev := &fakeDevice{path: "/dev/sdb3"}
			fs, err := Format(context.Background(), dev, test.fs, exec.NewTool("mkfs"))
			require.NoError(t, err)
			require.Len(t, r.calls, 1)
			assert.Equal(t, "mkfs", r.calls[0].name)
			assert.Equal(t, test.args, r.calls[0].args)
			assert.Equal(t, test.fs, fs.FSType())
			assert.Same(t, dev, fs.Block())
		})
	}
}

func TestFormat(t *testing.T) {
	r := record(t, nil)
	dev := DevicePath("/dev/sdb1")
	fs, err := Format(context.Background(), dev, F2FS, exec.NewTool("mkfs.f2fs"))
	require.NoError(t, err)
	require.NotNil(t, fs)
	assert.Equal(t, F2FS, fs.FSType())
	assert.Equal(t, "/dev/sdb1", fs.Block().Path())
	assert.Equal(t, []call{{name: "mkfs.f2fs", args: []string{"-f", "/dev/sdb1"}}}, r.calls)
}

func TestFormatFailed(t *testing.T) {
	cause := errors.New("mkfs.ext4: exit status 1")
	r := record(t, cause)
	fs, err := Format(context.Background(), DevicePath("/dev/sdc1"), Ext4, exec.NewTool("mkfs.ext4"))
	require.Error(t, err)
	assert.Nil(t, fs)
	assert.Len(t, r.calls, 1)

	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "/dev/sdc1", ferr.Device)
	assert.Equal(t, Ext4, ferr.Type)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Error formatting filesystem: mkfs.ext4: exit status 1", err.Error())
}

func TestFormatUnknownType(t *testing.T) {
	r := record(t, nil)
	fs, err := Format(context.Background(), DevicePath("/dev/sdc1"), FilesystemType(9), exec.NewTool("mkfs"))
	require.Error(t, err)
	assert.Nil(t, fs)
	assert.Empty(t, r.calls)
	var uerr *UnsupportedFilesystemError
	assert.True(t, errors.As(err, &uerr))
}

func TestFromPartition(t *testing.T) {
	r := record(t, errors.New("must not run"))
	for _, v := range FilesystemTypes() {
		for _, p := range []string{"/dev/sdb3", ""} {
			fs := FromPartition(DevicePath(p), v)
			require.NotNil(t, fs)
			assert.Equal(t, v, fs.FSType())
			assert.Equal(t, p, fs.Block().Path())
		}
	}
	assert.Empty(t, r.calls)
}

func TestFilesystemMount(t *testing.T) {
	r := record(t, nil)
	fs := FromPartition(DevicePath("/dev/sdb3"), F2FS)
	require.NoError(t, fs.Mount(context.Background(), "/mnt", "noatime"))
	assert.Equal(t, []call{{name: "mount", args: []string{"-t", "f2fs", "-o", "noatime", "/dev/sdb3", "/mnt"}}}, r.calls)
}
