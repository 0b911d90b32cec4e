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
	"fmt"
	"strings"
)

// FilesystemType is one of the filesystems alma knows how to create.
// The zero value is Ext4.
type FilesystemType int

const (
	Ext4 FilesystemType = iota
	// Vfat is only used for the EFI system partition and cannot be
	// selected from user input.
	Vfat
	F2FS
)

// FilesystemTypes returns every supported filesystem type.
func FilesystemTypes() []FilesystemType {
	return []FilesystemType{Ext4, Vfat, F2FS}
}

// UnsupportedFilesystemError is returned when a filesystem name is not
// one a user may select.
type UnsupportedFilesystemError struct {
	Input string
}

func (e *UnsupportedFilesystemError) Error() string {
	return fmt.Sprintf("%s is not supported or was not understood", e.Input)
}

// ParseFilesystemType parses a user supplied root filesystem name.
// Only ext4 and f2fs are accepted, case insensitive.
func ParseFilesystemType(s string) (FilesystemType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "ext4":
		return Ext4, nil
	case "f2fs":
		return F2FS, nil
	default:
		return Ext4, &UnsupportedFilesystemError{Input: v}
	}
}

// MountType returns the name given to mount -t.
func (f FilesystemType) MountType() string {
	switch f {
	case Ext4:
		return "ext4"
	case Vfat:
		return "vfat"
	case F2FS:
		return "f2fs"
	default:
		return ""
	}
}

func (f FilesystemType) String() string {
	if t := f.MountType(); t != "" {
		return t
	}
	return fmt.Sprintf("FilesystemType(%d)", int(f))
}

func (f FilesystemType) IsSupported() bool {
	return f.MountType() != ""
}

func (f FilesystemType) MarshalText() ([]byte, error) {
	if !f.IsSupported() {
		return nil, &UnsupportedFilesystemError{Input: f.String()}
	}
	return []byte(f.MountType()), nil
}

func (f *FilesystemType) UnmarshalText(b []byte) error {
	v, err := ParseFilesystemType(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// mkfsArgs returns the arguments given to the formatting tool, device
// path last.
func (f FilesystemType) mkfsArgs(device string) []string {
	switch f {
	case Ext4:
		return []string{"-F", device}
	case Vfat:
		return []string{"-F32", device}
	case F2FS:
		return []string{"-f", device}
	default:
		return nil
	}
}

// mkfsTool is the formatter binary used by the provisioning pipelines.
func (f FilesystemType) mkfsTool() string {
	switch f {
	case Ext4:
		return "mkfs.ext4"
	case Vfat:
		return "mkfs.vfat"
	case F2FS:
		return "mkfs.f2fs"
	default:
		return ""
	}
}
