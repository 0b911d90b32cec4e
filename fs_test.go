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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountType(t *testing.T) {
	assert.Equal(t, "ext4", Ext4.MountType())
	assert.Equal(t, "vfat", Vfat.MountType())
	assert.Equal(t, "f2fs", F2FS.MountType())
	assert.Equal(t, "", FilesystemType(42).MountType())
	assert.Equal(t, "FilesystemType(42)", FilesystemType(42).String())
}

// Every type must have a mount type, mkfs arguments and a formatter.
func TestFilesystemTypesMappings(t *testing.T) {
	seen := map[string]bool{}
	for _, v := range FilesystemTypes() {
		mt := v.MountType()
		require.NotEmpty(t, mt, "%d", int(v))
		assert.False(t, seen[mt], "duplicate mount type %s", mt)
		seen[mt] = true

		args := v.mkfsArgs("/dev/null")
		require.Len(t, args, 2, "%s", v)
		assert.Equal(t, "/dev/null", args[1])
		assert.NotEmpty(t, v.mkfsTool(), "%s", v)
		assert.True(t, v.IsSupported())
	}
	assert.Nil(t, FilesystemType(len(FilesystemTypes())).mkfsArgs("/dev/null"))
}

func TestParseFilesystemType(t *testing.T) {
	tests := []struct {
		in   string
		want FilesystemType
	}{
		{in: "ext4", want: Ext4},
		{in: "EXT4", want: Ext4},
		{in: "Ext4", want: Ext4},
		{in: " ext4 ", want: Ext4},
		{in: "f2fs", want: F2FS},
		{in: "F2FS\n", want: F2FS},
	}
	for _, test := range tests {
		got, err := ParseFilesystemType(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, got, test.in)
	}
}

func TestParseFilesystemTypeRoundTrip(t *testing.T) {
	for _, v := range []FilesystemType{Ext4, F2FS} {
		got, err := ParseFilesystemType(v.MountType())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestParseFilesystemTypeUnsupported(t *testing.T) {
	tests := []struct {
		in    string
		clean string
	}{
		{in: "vfat", clean: "vfat"},
		{in: "btrfs", clean: "btrfs"},
		{in: "", clean: ""},
		{in: "  XFS ", clean: "xfs"},
	}
	for _, test := range tests {
		_, err := ParseFilesystemType(test.in)
		require.Error(t, err, test.in)
		var uerr *UnsupportedFilesystemError
		require.True(t, errors.As(err, &uerr), test.in)
		assert.Equal(t, test.clean, uerr.Input)
		assert.Contains(t, err.Error(), test.clean)
	}
}

func TestFilesystemTypeText(t *testing.T) {
	var f FilesystemType
	require.NoError(t, f.UnmarshalText([]byte("F2FS")))
	assert.Equal(t, F2FS, f)
	assert.Error(t, f.UnmarshalText([]byte("vfat")))
	assert.Equal(t, F2FS, f)

	b, err := Vfat.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "vfat", string(b))
	_, err = FilesystemType(-1).MarshalText()
	assert.Error(t, err)
}
