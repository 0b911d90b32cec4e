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
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"go.linka.cloud/alma/pkg/exec"
)

const (
	perm os.FileMode = 0644
)

var basePackages = []string{
	"base",
	"linux",
	"linux-firmware",
	"grub",
	"efibootmgr",
	"intel-ucode",
	"amd-ucode",
	"dosfstools",
}

type creator struct {
	o *createOptions

	disk   Disk
	loop   *LoopDevice
	crypt  *CryptDevice
	boot   *Filesystem
	root   *Filesystem
	mounts *mountStack

	// image is the image file created by this run.
	image string
}

func dependencies(o *createOptions) []string {
	deps := []string{"parted", "mount", "umount", "blkid", "pacstrap", "arch-chroot", Vfat.mkfsTool(), o.rootFS.mkfsTool()}
	if o.isImage() {
		deps = append(deps, "losetup", "kpartx")
	} else {
		deps = append(deps, "blockdev")
	}
	if o.encryptedRoot {
		deps = append(deps, "cryptsetup")
	}
	return deps
}

// Create provisions a new appliance on a removable block device or, with
// WithImage, on a new image file.
func Create(ctx context.Context, opts ...CreateOption) (err error) {
	o := newCreateOptions(opts...)
	if o.path == "" {
		return fmt.Errorf("a block device or an image path is required")
	}
	if !o.rootFS.IsSupported() || o.rootFS == Vfat {
		return &UnsupportedFilesystemError{Input: o.rootFS.String()}
	}
	if err := exec.CheckDependencies(dependencies(o)...); err != nil {
		return err
	}
	if err := checkPresets(o.presets); err != nil {
		return err
	}
	c := &creator{o: o}
	defer func() {
		err = multierr.Append(err, c.cleanUp(context.Background(), err != nil))
	}()
	if err = c.openDisk(ctx); err != nil {
		return err
	}
	if err = c.partition(ctx); err != nil {
		return err
	}
	if err = c.encrypt(ctx); err != nil {
		return err
	}
	if err = c.format(ctx); err != nil {
		return err
	}
	if err = c.mount(ctx); err != nil {
		return err
	}
	if err = c.bootstrap(ctx); err != nil {
		return err
	}
	if err = c.setupFstab(ctx); err != nil {
		return err
	}
	for _, v := range o.presets {
		if err = v.apply(ctx, c.mounts.root); err != nil {
			return err
		}
	}
	cmdline, err := c.kernelCmdline(ctx)
	if err != nil {
		return err
	}
	if err = installBootloader(ctx, c.mounts.root, c.disk, cmdline); err != nil {
		return err
	}
	if o.interactive {
		logrus.Infof("dropping you to a chroot shell, exit to finish the installation")
		if err = exec.RunInteractive(ctx, "arch-chroot", c.mounts.root); err != nil {
			return err
		}
	}
	logrus.Infof("appliance created on %s", o.path)
	return nil
}

func (c *creator) openDisk(ctx context.Context) error {
	if !c.o.isImage() {
		d, err := OpenDevice(c.o.path, c.o.allowNonRemovable)
		if err != nil {
			return err
		}
		c.disk = d
		return nil
	}
	if err := CreateImage(c.o.path, c.o.imageSize, c.o.overwrite); err != nil {
		return err
	}
	c.image = c.o.path
	l, err := AttachLoopDevice(ctx, c.o.path)
	if err != nil {
		return err
	}
	c.loop, c.disk = l, l
	return nil
}

func (c *creator) partition(ctx context.Context) error {
	if err := Partition(ctx, c.disk, c.o.bootSize); err != nil {
		return err
	}
	if c.loop != nil {
		return c.loop.MapPartitions(ctx)
	}
	return exec.Run(ctx, "blockdev", "--rereadpt", c.disk.Path())
}

func (c *creator) encrypt(ctx context.Context) (err error) {
	if !c.o.encryptedRoot {
		return nil
	}
	c.crypt, err = EncryptPartition(ctx, c.disk.Partition(RootPartition), c.o.luksPassword)
	return err
}

// rootDevice is where the root filesystem lives.
func (c *creator) rootDevice() BlockDevice {
	if c.crypt != nil {
		return c.crypt
	}
	return c.disk.Partition(RootPartition)
}

func (c *creator) format(ctx context.Context) (err error) {
	logrus.Infof("formatting boot partition as %s", Vfat)
	c.boot, err = Format(ctx, c.disk.Partition(BootPartition), Vfat, exec.NewTool(Vfat.mkfsTool()))
	if err != nil {
		return err
	}
	logrus.Infof("formatting root partition as %s", c.o.rootFS)
	c.root, err = Format(ctx, c.rootDevice(), c.o.rootFS, exec.NewTool(c.o.rootFS.mkfsTool()))
	return err
}

func (c *creator) mount(ctx context.Context) (err error) {
	if c.mounts, err = newMountStack(c.o.workdir); err != nil {
		return err
	}
	if err := c.mounts.mount(ctx, c.root, "/"); err != nil {
		return err
	}
	return c.mounts.mount(ctx, c.boot, "/boot")
}

func packages(rootFS FilesystemType, extra ...string) []string {
	p := append([]string(nil), basePackages...)
	if rootFS == F2FS {
		p = append(p, "f2fs-tools")
	}
	return append(p, extra...)
}

func (c *creator) bootstrap(ctx context.Context) error {
	p := packages(c.o.rootFS, append(c.o.extraPackages, presetPackages(c.o.presets)...)...)
	logrus.Infof("bootstrapping system: %s", strings.Join(p, " "))
	return exec.Run(ctx, "pacstrap", append([]string{"-c", c.mounts.root}, p...)...)
}

func diskUUID(ctx context.Context, disk BlockDevice) (string, error) {
	o, _, err := exec.RunOut(ctx, "blkid", "-s", "UUID", "-o", "value", disk.Path())
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(o, "\n"), nil
}

func fstab(rootUUID string, rootFS FilesystemType, bootUUID string) string {
	return fmt.Sprintf("UUID=%s / %s rw,relatime 0 1\nUUID=%s /boot %s rw,relatime 0 2\n", rootUUID, rootFS.MountType(), bootUUID, Vfat.MountType())
}

func (c *creator) setupFstab(ctx context.Context) error {
	logrus.Infof("writing fstab")
	rootUUID, err := diskUUID(ctx, c.root.Block())
	if err != nil {
		return err
	}
	bootUUID, err := diskUUID(ctx, c.boot.Block())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(c.mounts.root, "etc"), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.mounts.root, "etc", "fstab"), []byte(fstab(rootUUID, c.root.FSType(), bootUUID)), perm)
}

// kernelCmdline rebuilds the initramfs with the encrypt hook when the
// root is encrypted and returns the arguments it needs.
func (c *creator) kernelCmdline(ctx context.Context) (string, error) {
	if c.crypt == nil {
		return "", nil
	}
	if err := setupInitramfs(ctx, c.mounts.root); err != nil {
		return "", err
	}
	id, err := diskUUID(ctx, c.crypt.Partition())
	if err != nil {
		return "", err
	}
	return kernelCmdline(id), nil
}

// cleanUp releases what was set up, in reverse order. The image file is
// removed when the run failed.
func (c *creator) cleanUp(ctx context.Context, failed bool) error {
	var merr error
	if c.mounts != nil {
		merr = multierr.Append(merr, c.mounts.close(ctx))
	}
	if c.crypt != nil {
		merr = multierr.Append(merr, c.crypt.Close(ctx))
	}
	if c.loop != nil {
		merr = multierr.Append(merr, c.loop.Detach(ctx))
	}
	if failed && c.image != "" {
		logrus.Warnf("removing incomplete image %s", c.image)
		merr = multierr.Append(merr, os.Remove(c.image))
	}
	return merr
}
