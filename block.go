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
	"unicode"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"go.linka.cloud/alma/pkg/exec"
)

// BlockDevice is anything a filesystem can be created on.
type BlockDevice interface {
	// Path is the device path handed to external tools, e.g. /dev/sdb1.
	Path() string
}

// DevicePath is a BlockDevice known only by its path, typically a
// partition.
type DevicePath string

func (d DevicePath) Path() string {
	return string(d)
}

// Disk is a whole disk that can be split into partitions.
type Disk interface {
	BlockDevice
	Partition(n int) BlockDevice
}

// Device is a physical block device.
type Device struct {
	path string
}

// OpenDevice checks that path is a block device and, unless
// allowNonRemovable is set, that the kernel reports it as removable.
func OpenDevice(path string, allowNonRemovable bool) (*Device, error) {
	p, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}
	var st unix.Stat_t
	if err := unix.Stat(p, &st); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return nil, fmt.Errorf("%s is not a block device", path)
	}
	d := &Device{path: p}
	if allowNonRemovable {
		return d, nil
	}
	ok, err := d.removable()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s is not a removable device, use --allow-non-removable to use it anyway", path)
	}
	return d, nil
}

func (d *Device) Path() string {
	return d.path
}

func (d *Device) Partition(n int) BlockDevice {
	return DevicePath(partitionPath(d.path, n))
}

func (d *Device) removable() (bool, error) {
	b, err := os.ReadFile(filepath.Join("/sys/block", filepath.Base(d.path), "removable"))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(b)) == "1", nil
}

// partitionPath follows the kernel naming: sdb → sdb1, loop0 → loop0p1,
// nvme0n1 → nvme0n1p1.
func partitionPath(dev string, n int) string {
	if dev == "" {
		return ""
	}
	if r := rune(dev[len(dev)-1]); unicode.IsDigit(r) {
		return fmt.Sprintf("%sp%d", dev, n)
	}
	return fmt.Sprintf("%s%d", dev, n)
}

// LoopDevice is an image file attached to a loop device, its partitions
// exposed through device-mapper.
type LoopDevice struct {
	image string
	path  string
}

// AttachLoopDevice attaches image to the first free loop device.
func AttachLoopDevice(ctx context.Context, image string) (*LoopDevice, error) {
	logrus.Infof("attaching %s to a loop device", image)
	o, _, err := exec.RunOut(ctx, "losetup", "--show", "-f", image)
	if err != nil {
		return nil, err
	}
	return &LoopDevice{image: image, path: strings.TrimSuffix(o, "\n")}, nil
}

func (l *LoopDevice) Path() string {
	return l.path
}

func (l *LoopDevice) Image() string {
	return l.image
}

// MapPartitions creates the device-mapper entries of the partitions.
func (l *LoopDevice) MapPartitions(ctx context.Context) error {
	return exec.Run(ctx, "kpartx", "-a", l.path)
}

func (l *LoopDevice) Partition(n int) BlockDevice {
	return DevicePath(fmt.Sprintf("/dev/mapper/%sp%d", filepath.Base(l.path), n))
}

// Detach removes partition mappings and releases the loop device.
func (l *LoopDevice) Detach(ctx context.Context) error {
	logrus.Infof("detaching loop device %s", l.path)
	return multierr.Combine(
		exec.Run(ctx, "kpartx", "-d", l.path),
		exec.Run(ctx, "losetup", "-d", l.path),
	)
}
