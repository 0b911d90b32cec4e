// Copyright 2022 Linka Cloud  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"go.linka.cloud/alma/pkg/qemu"
)

var (
	enableGUI bool
	accel     string
	arch      string
	cpus      uint
	mem       uint
	bios      string
	qemuBin   string

	qemuCmd = &cobra.Command{
		Use:   "qemu [block device] [args...]",
		Short: "Boot the USB with Qemu",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []qemu.Option{
				qemu.WithAccel(accel),
				qemu.WithArch(arch),
				qemu.WithCPUs(cpus),
				qemu.WithMemory(mem),
				qemu.WithBios(bios),
				qemu.WithQemuBinPath(qemuBin),
				qemu.WithArgs(args[1:]...),
				qemu.WithStdin(os.Stdin),
				qemu.WithStdout(os.Stdout),
				qemu.WithStderr(os.Stderr),
			}
			if enableGUI {
				opts = append(opts, qemu.WithGUI())
			}
			return qemu.Run(cmd.Context(), args[0], opts...)
		},
	}
)

func init() {
	flags := qemuCmd.Flags()
	flags.SetInterspersed(false)
	flags.BoolVar(&enableGUI, "gui", false, "Set qemu to use video output instead of stdio")
	flags.StringVar(&accel, "accel", qemu.DefaultAccel, "Choose acceleration mode. Use 'tcg' to disable it.")
	flags.StringVar(&arch, "arch", qemu.DefaultArch, "Type of architecture to use, e.g. x86_64, aarch64")
	flags.UintVar(&cpus, "cpus", 1, "Number of CPUs")
	flags.UintVar(&mem, "mem", 4096, "Amount of memory in MB")
	flags.StringVar(&bios, "bios", "", "Path to the optional bios binary, e.g. OVMF.fd to boot with UEFI")
	flags.StringVar(&qemuBin, "qemu", "", "Path to the qemu binary (otherwise look in $PATH)")
	rootCmd.AddCommand(qemuCmd)
}
