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
	"fmt"

	"github.com/spf13/cobra"

	"go.linka.cloud/alma"
)

var (
	createRootFS      rootFSFlag
	extraPackages     []string
	interactive       bool
	image             string
	overwrite         bool
	allowNonRemovable bool
	bootSize          uint64
	encryptedRoot     bool
	luksPassword      string
	presets           []string

	createCmd = &cobra.Command{
		Use:     "create [path]",
		Short:   "Create a new Arch Linux USB",
		Args:    cobra.ExactArgs(1),
		PreRunE: requireRoot,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := createOptions(args[0])
			if err != nil {
				return err
			}
			return alma.Create(cmd.Context(), opts...)
		},
	}
)

func createOptions(path string) ([]alma.CreateOption, error) {
	opts := []alma.CreateOption{
		alma.WithPath(path),
		alma.WithRootFS(createRootFS.Get()),
		alma.WithBootSize(bootSize),
		alma.WithExtraPackages(extraPackages...),
		alma.WithInteractive(interactive),
		alma.WithAllowNonRemovable(allowNonRemovable),
		alma.WithOverwrite(overwrite),
	}
	if encryptedRoot || luksPassword != "" {
		opts = append(opts, alma.WithEncryptedRoot(luksPassword))
	}
	if len(presets) != 0 {
		p, err := alma.LoadPresets(presets...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, alma.WithPresets(p...))
	}
	if image == "" {
		if overwrite {
			return nil, fmt.Errorf("--overwrite requires --image")
		}
		return opts, nil
	}
	size, err := parseSize(image)
	if err != nil {
		return nil, fmt.Errorf("invalid image size %q: %w", image, err)
	}
	return append(opts, alma.WithImage(size)), nil
}

func init() {
	flags := createCmd.Flags()
	flags.StringArrayVarP(&extraPackages, "extra-packages", "p", nil, "Additional packages to install")
	flags.BoolVarP(&interactive, "interactive", "i", false, "Enter interactive chroot before unmounting the drive")
	addRootFSFlag(flags, &createRootFS, "Filesystem of the root partition: ext4, f2fs. Parsed case insensitive, ext4 is used if not set or not understood")
	flags.StringVar(&image, "image", "", "Create an image of the given size (e.g. 8GiB) at path instead of using a block device")
	flags.BoolVar(&overwrite, "overwrite", false, "Overwrite existing image files. Use with caution!")
	flags.BoolVar(&allowNonRemovable, "allow-non-removable", false, "Allow installation on non-removable devices. Use with extreme caution!")
	flags.BoolVarP(&encryptedRoot, "encrypted-root", "e", false, "Encrypt the root partition. The password is asked for unless --luks-password is set")
	flags.StringVar(&luksPassword, "luks-password", "", "Password of the LUKS encrypted root partition, implies --encrypted-root")
	flags.StringArrayVar(&presets, "presets", nil, "Path to preset files or directories of *.toml preset files")
	flags.Uint64Var(&bootSize, "boot-size", alma.DefaultBootSize, "End of the EFI system partition in MiB")
	rootCmd.AddCommand(createCmd)
}
