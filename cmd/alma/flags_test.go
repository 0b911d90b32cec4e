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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.linka.cloud/alma"
)

func TestRootFSFlag(t *testing.T) {
	tests := []struct {
		args []string
		want alma.FilesystemType
	}{
		{args: nil, want: alma.Ext4},
		{args: []string{"-f", "f2fs"}, want: alma.F2FS},
		{args: []string{"--rootfs", "F2FS"}, want: alma.F2FS},
		{args: []string{"--rootfs", " Ext4 "}, want: alma.Ext4},
		{args: []string{"--rootfs", "btrfs"}, want: alma.Ext4},
		{args: []string{"--rootfs", "vfat"}, want: alma.Ext4},
		{args: []string{"--rootfs", ""}, want: alma.Ext4},
	}
	for _, test := range tests {
		var f rootFSFlag
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		addRootFSFlag(flags, &f, "")
		require.NoError(t, flags.Parse(test.args), "%v", test.args)
		assert.Equal(t, test.want, f.Get(), "%v", test.args)
	}
}

func TestParseSize(t *testing.T) {
	s, err := parseSize("8GB")
	require.NoError(t, err)
	assert.Equal(t, uint64(8*datasize.GB), s)

	_, err = parseSize("a lot")
	assert.Error(t, err)
}

func TestCreateOptions(t *testing.T) {
	defer func() { image, overwrite, encryptedRoot, luksPassword, presets = "", false, false, "", nil }()

	_, err := createOptions("/dev/sdb")
	require.NoError(t, err)

	overwrite = true
	_, err = createOptions("/dev/sdb")
	assert.Error(t, err)

	image = "nope"
	_, err = createOptions("alma.img")
	assert.Error(t, err)

	image = "4GB"
	opts, err := createOptions("alma.img")
	require.NoError(t, err)
	n := len(opts)

	encryptedRoot = true
	opts, err = createOptions("alma.img")
	require.NoError(t, err)
	assert.Len(t, opts, n+1)

	encryptedRoot, luksPassword = false, "secret"
	opts, err = createOptions("alma.img")
	require.NoError(t, err)
	assert.Len(t, opts, n+1)

	presets = []string{filepath.Join(t.TempDir(), "missing.toml")}
	_, err = createOptions("alma.img")
	assert.Error(t, err)

	p := filepath.Join(t.TempDir(), "vim.toml")
	require.NoError(t, os.WriteFile(p, []byte("packages = [\"vim\"]\n"), 0644))
	presets = []string{p}
	opts, err = createOptions("alma.img")
	require.NoError(t, err)
	assert.Len(t, opts, n+2)
}

func TestChrootFlagsAfterDevice(t *testing.T) {
	defer func() { chrootRootFS = rootFSFlag{} }()
	flags := chrootCmd.Flags()
	require.NoError(t, flags.Parse([]string{"/dev/sdb", "-f", "f2fs", "--", "ls", "-la"}))
	assert.Equal(t, alma.F2FS, chrootRootFS.Get())
	assert.Equal(t, []string{"/dev/sdb", "ls", "-la"}, flags.Args())
	assert.NoError(t, chrootArgs(chrootCmd, flags.Args()))
}

func TestChrootArgs(t *testing.T) {
	tests := []struct {
		args    []string
		want    []string
		rootFS  alma.FilesystemType
		wantErr bool
	}{
		{args: []string{"/dev/sdb"}, want: []string{"/dev/sdb"}},
		{args: []string{"/dev/sdb", "-f", "f2fs"}, want: []string{"/dev/sdb"}, rootFS: alma.F2FS},
		{args: []string{"-f", "f2fs", "/dev/sdb", "--", "pacman", "-Syu"}, want: []string{"/dev/sdb", "pacman", "-Syu"}, rootFS: alma.F2FS},
		{args: []string{"/dev/sdb", "--", "ls", "-f", "f2fs"}, want: []string{"/dev/sdb", "ls", "-f", "f2fs"}},
		{args: []string{"/dev/sdb", "ls"}, wantErr: true},
		{args: []string{"--", "ls"}, wantErr: true},
		{args: nil, wantErr: true},
	}
	for _, test := range tests {
		var (
			f   rootFSFlag
			got []string
		)
		cmd := &cobra.Command{
			Use:           "chroot",
			Args:          chrootArgs,
			SilenceErrors: true,
			SilenceUsage:  true,
			RunE: func(cmd *cobra.Command, args []string) error {
				got = args
				return nil
			},
		}
		addRootFSFlag(cmd.Flags(), &f, "")
		cmd.SetArgs(test.args)
		err := cmd.Execute()
		if test.wantErr {
			assert.Error(t, err, "%v", test.args)
			continue
		}
		require.NoError(t, err, "%v", test.args)
		assert.Equal(t, test.want, got, "%v", test.args)
		assert.Equal(t, test.rootFS, f.Get(), "%v", test.args)
	}
}

func TestCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, v := range []string{"create", "chroot", "qemu", "version"} {
		assert.Contains(t, names, v)
	}
	f := createCmd.Flags().Lookup("rootfs")
	require.NotNil(t, f)
	assert.Equal(t, "f", f.Shorthand)
	assert.Equal(t, "ext4", f.DefValue)
}
