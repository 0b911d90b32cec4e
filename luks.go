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
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go.linka.cloud/alma/pkg/exec"
)

const (
	// luksType is what blkid reports for a LUKS container.
	luksType = "crypto_LUKS"
	// bootMapping is the device-mapper name the initramfs opens the root
	// container as.
	bootMapping = "alma_root"
)

// CryptDevice is an opened LUKS container. Its Path is the decrypted
// device-mapper node, which is what gets formatted and mounted.
type CryptDevice struct {
	part BlockDevice
	name string
}

func newMappingName() string {
	return fmt.Sprintf("alma-%s-root", uuid.New().String())
}

// EncryptPartition formats part as a LUKS2 container and opens it.
// An empty password lets cryptsetup ask for it on the terminal.
func EncryptPartition(ctx context.Context, part BlockDevice, password string) (*CryptDevice, error) {
	logrus.Infof("encrypting %s", part.Path())
	if password == "" {
		if err := exec.RunInteractive(ctx, "cryptsetup", "luksFormat", "-q", "--verify-passphrase", "--type", "luks2", part.Path()); err != nil {
			return nil, err
		}
		return OpenCryptDevice(ctx, part, "")
	}
	key, err := writeKeyFile(password)
	if err != nil {
		return nil, err
	}
	defer os.Remove(key)
	if err := exec.Run(ctx, "cryptsetup", "luksFormat", "--batch-mode", "--type", "luks2", part.Path(), key); err != nil {
		return nil, err
	}
	name := newMappingName()
	if err := exec.Run(ctx, "cryptsetup", "open", "--key-file", key, part.Path(), name); err != nil {
		return nil, err
	}
	return &CryptDevice{part: part, name: name}, nil
}

// OpenCryptDevice opens an existing LUKS container. An empty password
// lets cryptsetup ask for it on the terminal.
func OpenCryptDevice(ctx context.Context, part BlockDevice, password string) (*CryptDevice, error) {
	name := newMappingName()
	logrus.Infof("opening %s as %s", part.Path(), name)
	if password == "" {
		if err := exec.RunInteractive(ctx, "cryptsetup", "open", part.Path(), name); err != nil {
			return nil, err
		}
		return &CryptDevice{part: part, name: name}, nil
	}
	key, err := writeKeyFile(password)
	if err != nil {
		return nil, err
	}
	defer os.Remove(key)
	if err := exec.Run(ctx, "cryptsetup", "open", "--key-file", key, part.Path(), name); err != nil {
		return nil, err
	}
	return &CryptDevice{part: part, name: name}, nil
}

func writeKeyFile(password string) (string, error) {
	f, err := os.CreateTemp("", "alma-key")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(password); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// IsEncrypted reports whether part holds a LUKS container.
func IsEncrypted(ctx context.Context, part BlockDevice) (bool, error) {
	o, _, err := exec.RunOut(ctx, "blkid", "-s", "TYPE", "-o", "value", part.Path())
	var eerr *osexec.ExitError
	// blkid exits with 2 when nothing was found
	if errors.As(err, &eerr) && eerr.ExitCode() == 2 {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(o) == luksType, nil
}

func (c *CryptDevice) Path() string {
	return filepath.Join("/dev/mapper", c.name)
}

// Name is the device-mapper name of the opened container.
func (c *CryptDevice) Name() string {
	return c.name
}

// Partition is the encrypted partition.
func (c *CryptDevice) Partition() BlockDevice {
	return c.part
}

func (c *CryptDevice) Close(ctx context.Context) error {
	logrus.Infof("closing %s", c.Path())
	return exec.Run(ctx, "cryptsetup", "close", c.name)
}

// kernelCmdline is what the encrypt initramfs hook needs to find and
// open the root container.
func kernelCmdline(luksUUID string) string {
	return fmt.Sprintf("cryptdevice=UUID=%s:%s root=/dev/mapper/%s", luksUUID, bootMapping, bootMapping)
}

const mkinitcpioConf = `HOOKS=(base udev autodetect modconf kms keyboard keymap consolefont block encrypt filesystems fsck)
`

// setupInitramfs adds the encrypt hook and rebuilds the initramfs images.
func setupInitramfs(ctx context.Context, root string) error {
	logrus.Infof("adding encrypt hook to the initramfs")
	dir := filepath.Join(root, "etc", "mkinitcpio.conf.d")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "alma.conf"), []byte(mkinitcpioConf), perm); err != nil {
		return err
	}
	return exec.Run(ctx, "arch-chroot", root, "mkinitcpio", "-P")
}
