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

const (
	BIOSPartition = 1
	BootPartition = 2
	RootPartition = 3

	DefaultBootSize uint64 = 550
	minBootSize     uint64 = 100
)

func partitionArgs(device string, bootSize uint64) []string {
	return []string{"-s", "-a", "optimal", device,
		"mklabel", "gpt",
		"mkpart", "primary", "1MiB", "2MiB",
		"set", "1", "bios_grub", "on",
		"mkpart", "ESP", "fat32", "2MiB", fmt.Sprintf("%dMiB", bootSize),
		"set", "2", "esp", "on",
		"mkpart", "primary", fmt.Sprintf("%dMiB", bootSize), "100%",
	}
}

// Partition writes a new GPT partition table to device: a BIOS boot
// partition, an EFI system partition ending at bootSize MiB and a root
// partition using the remaining space.
func Partition(ctx context.Context, device BlockDevice, bootSize uint64) error {
	if bootSize < minBootSize {
		return fmt.Errorf("boot partition size must be at least %dMiB", minBootSize)
	}
	logrus.Infof("partitioning %s", device.Path())
	return exec.Run(ctx, "parted", partitionArgs(device.Path(), bootSize)...)
}
