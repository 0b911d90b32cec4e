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
	"os"
)

type CreateOption func(o *createOptions)

type createOptions struct {
	path              string
	imageSize         uint64
	overwrite         bool
	allowNonRemovable bool

	rootFS   FilesystemType
	bootSize uint64

	encryptedRoot bool
	luksPassword  string

	extraPackages []string
	presets       []*Preset
	interactive   bool

	workdir string
}

func newCreateOptions(opts ...CreateOption) *createOptions {
	o := &createOptions{
		bootSize: DefaultBootSize,
		workdir:  os.TempDir(),
	}
	for _, v := range opts {
		v(o)
	}
	return o
}

func (o *createOptions) isImage() bool {
	return o.imageSize != 0
}

// WithPath sets the target block device, or the image file to create
// when WithImage is used.
func WithPath(path string) CreateOption {
	return func(o *createOptions) {
		o.path = path
	}
}

// WithImage creates an image file of the given size in bytes instead of
// using a block device.
func WithImage(size uint64) CreateOption {
	return func(o *createOptions) {
		o.imageSize = size
	}
}

func WithOverwrite(b bool) CreateOption {
	return func(o *createOptions) {
		o.overwrite = b
	}
}

func WithAllowNonRemovable(b bool) CreateOption {
	return func(o *createOptions) {
		o.allowNonRemovable = b
	}
}

func WithRootFS(fs FilesystemType) CreateOption {
	return func(o *createOptions) {
		o.rootFS = fs
	}
}

// WithBootSize sets where the EFI system partition ends, in MiB.
func WithBootSize(size uint64) CreateOption {
	return func(o *createOptions) {
		o.bootSize = size
	}
}

func WithExtraPackages(packages ...string) CreateOption {
	return func(o *createOptions) {
		o.extraPackages = append(o.extraPackages, packages...)
	}
}

// WithEncryptedRoot puts the root filesystem in a LUKS2 container. An
// empty password lets cryptsetup ask for it on the terminal.
func WithEncryptedRoot(password string) CreateOption {
	return func(o *createOptions) {
		o.encryptedRoot = true
		o.luksPassword = password
	}
}

// WithPresets installs the presets packages and runs their scripts in
// order.
func WithPresets(presets ...*Preset) CreateOption {
	return func(o *createOptions) {
		o.presets = append(o.presets, presets...)
	}
}

func WithInteractive(b bool) CreateOption {
	return func(o *createOptions) {
		o.interactive = b
	}
}

func WithWorkdir(dir string) CreateOption {
	return func(o *createOptions) {
		o.workdir = dir
	}
}
