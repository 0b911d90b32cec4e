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
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"go.linka.cloud/alma/pkg/exec"
)

const grubCfg = `GRUB_DEFAULT=0
GRUB_TIMEOUT=1
GRUB_DISTRIBUTOR="Arch"
GRUB_CMDLINE_LINUX_DEFAULT="quiet rootwait"
GRUB_CMDLINE_LINUX="%s"
GRUB_PRELOAD_MODULES="part_gpt part_msdos"
GRUB_TERMINAL_INPUT=console
GRUB_GFXMODE=auto
GRUB_GFXPAYLOAD_LINUX=keep
GRUB_DISABLE_RECOVERY=true
`

func grubConfig(cmdline string) string {
	return fmt.Sprintf(grubCfg, cmdline)
}

func grubInstallArgs(root string, dev BlockDevice) [][]string {
	return [][]string{
		{root, "grub-install", "--target=i386-pc", "--boot-directory=/boot", dev.Path()},
		{root, "grub-install", "--target=x86_64-efi", "--efi-directory=/boot", "--boot-directory=/boot", "--removable", "--no-nvram"},
		{root, "grub-mkconfig", "-o", "/boot/grub/grub.cfg"},
	}
}

// installBootloader installs grub for both BIOS and UEFI so the
// appliance boots on any x86_64 machine. cmdline is appended to the
// kernel command line.
func installBootloader(ctx context.Context, root string, dev BlockDevice, cmdline string) error {
	logrus.Infof("installing grub bootloader")
	if err := os.MkdirAll(filepath.Join(root, "etc", "default"), os.ModePerm); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, "etc", "default", "grub"), []byte(grubConfig(cmdline)), perm); err != nil {
		return err
	}
	for _, args := range grubInstallArgs(root, dev) {
		if err := exec.Run(ctx, "arch-chroot", args...); err != nil {
			return err
		}
	}
	return nil
}
