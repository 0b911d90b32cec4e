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

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"go.linka.cloud/alma/pkg/exec"
)

// chrootWorkdir is where the appliance gets mounted.
var chrootWorkdir = os.TempDir

// Chroot mounts an existing appliance and runs command inside it, or an
// interactive shell when command is empty. rootFS must be the type the
// root partition was created with. An encrypted root is opened first,
// cryptsetup asks for its password.
func Chroot(ctx context.Context, disk Disk, rootFS FilesystemType, command ...string) (err error) {
	if err := exec.CheckDependencies("mount", "umount", "blkid", "arch-chroot"); err != nil {
		return err
	}
	var rootDev BlockDevice = disk.Partition(RootPartition)
	encrypted, err := IsEncrypted(ctx, rootDev)
	if err != nil {
		return err
	}
	if encrypted {
		if err := exec.CheckDependencies("cryptsetup"); err != nil {
			return err
		}
		var c *CryptDevice
		if c, err = OpenCryptDevice(ctx, rootDev, ""); err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, c.Close(context.Background()))
		}()
		rootDev = c
	}
	root := FromPartition(rootDev, rootFS)
	boot := FromPartition(disk.Partition(BootPartition), Vfat)
	mounts, err := newMountStack(chrootWorkdir())
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, mounts.close(context.Background()))
	}()
	if err := mounts.mount(ctx, root, "/"); err != nil {
		return err
	}
	if err := mounts.mount(ctx, boot, "/boot"); err != nil {
		return err
	}
	r, err := ReadOSRelease(mounts.root)
	if err != nil {
		return err
	}
	if r.ID != ReleaseArch {
		return fmt.Errorf("%s: distribution not supported", r.ID)
	}
	logrus.Infof("entering %s on %s", r.PrettyName, disk.Path())
	return exec.RunInteractive(ctx, "arch-chroot", append([]string{mounts.root}, command...)...)
}
