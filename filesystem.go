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

	"github.com/sirupsen/logrus"

	"go.linka.cloud/alma/pkg/exec"
)

// FormatError is returned when the formatting tool failed.
type FormatError struct {
	Device string
	Type   FilesystemType
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Error formatting filesystem: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Filesystem records that a filesystem of a given type lives on a block
// device.
//
// The block device is borrowed: it must stay valid for as long as the
// Filesystem is used, and it is never closed or detached from here.
type Filesystem struct {
	fsType FilesystemType
	block  BlockDevice
}

// Format creates a new filesystem of type fsType on block using mkfs.
// It blocks until the tool exits and returns a Filesystem only if the
// tool succeeded. Formatting is destructive and is not serialized:
// callers must own the device exclusively.
func Format(ctx context.Context, block BlockDevice, fsType FilesystemType, mkfs *exec.Tool) (*Filesystem, error) {
	args := fsType.mkfsArgs(block.Path())
	if args == nil {
		return nil, &UnsupportedFilesystemError{Input: fsType.String()}
	}
	cmd := mkfs.Execute().Args(args...)
	logrus.Debugf("formatting %s as %s: %s", block.Path(), fsType, cmd)
	if err := cmd.Run(ctx); err != nil {
		return nil, &FormatError{Device: block.Path(), Type: fsType, Err: err}
	}
	return &Filesystem{fsType: fsType, block: block}, nil
}

// FromPartition asserts that block already holds a filesystem of type
// fsType. Nothing is checked against the device.
func FromPartition(block BlockDevice, fsType FilesystemType) *Filesystem {
	return &Filesystem{fsType: fsType, block: block}
}

func (f *Filesystem) Block() BlockDevice {
	return f.block
}

func (f *Filesystem) FSType() FilesystemType {
	return f.fsType
}

// Mount mounts the filesystem on target using its mount type.
func (f *Filesystem) Mount(ctx context.Context, target string, opts ...string) error {
	args := []string{"-t", f.fsType.MountType()}
	for _, o := range opts {
		args = append(args, "-o", o)
	}
	args = append(args, f.block.Path(), target)
	return exec.Run(ctx, "mount", args...)
}

func (f *Filesystem) String() string {
	return fmt.Sprintf("%s on %s", f.fsType, f.block.Path())
}
