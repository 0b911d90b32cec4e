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
	chrootRootFS            rootFSFlag
	chrootAllowNonRemovable bool

	chrootCmd = &cobra.Command{
		Use:     "chroot [block device] [-- command...]",
		Short:   "Chroot into exiting Live USB",
		Example: "  alma chroot /dev/sdb -f f2fs -- pacman -Syu",
		Args:    chrootArgs,
		PreRunE: requireRoot,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := alma.OpenDevice(args[0], chrootAllowNonRemovable)
			if err != nil {
				return err
			}
			return alma.Chroot(cmd.Context(), d, chrootRootFS.Get(), args[1:]...)
		},
	}
)

// chrootArgs expects the device alone before "--", the command after it
// is left untouched.
func chrootArgs(cmd *cobra.Command, args []string) error {
	n := cmd.ArgsLenAtDash()
	if n == -1 {
		n = len(args)
	}
	if n != 1 {
		return fmt.Errorf("expected exactly one block device before --, got %d arguments", n)
	}
	return nil
}

func init() {
	flags := chrootCmd.Flags()
	flags.BoolVar(&chrootAllowNonRemovable, "allow-non-removable", false, "Allow installation on non-removable devices. Use with extreme caution!")
	addRootFSFlag(flags, &chrootRootFS, "Filesystem of the appliance root partition, ext4 is assumed if not set")
	rootCmd.AddCommand(chrootCmd)
}
