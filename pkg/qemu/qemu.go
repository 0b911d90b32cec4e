// Copyright 2022 Linka Cloud  All rights reserved.
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

package qemu

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.linka.cloud/alma/pkg/exec"
)

var (
	DefaultArch  string
	DefaultAccel string
)

func init() {
	switch runtime.GOARCH {
	case "arm64":
		DefaultArch = "aarch64"
	case "amd64":
		DefaultArch = "x86_64"
	}
	switch {
	case HaveKVM():
		DefaultAccel = "kvm:tcg"
	case runtime.GOOS == "darwin":
		DefaultAccel = "hvf:tcg"
	}
}

func newConfig(path string, opts ...Option) *config {
	c := &config{}
	for _, o := range opts {
		o(c)
	}
	c.path = path
	// Generate UUID, so that /sys/class/dmi/id/product_uuid is populated
	c.uuid = uuid.New()
	if c.arch == "" {
		c.arch = DefaultArch
	}
	if c.accel == "" {
		c.accel = DefaultAccel
	}
	if c.cpus == 0 {
		c.cpus = 1
	}
	if c.memory == 0 {
		c.memory = 4096
	}
	return c
}

// Run boots the appliance stored on the block device or image at path.
func Run(ctx context.Context, path string, opts ...Option) error {
	c := newConfig(path, opts...)
	if _, err := os.Stat(c.path); err != nil {
		return err
	}
	if err := c.discoverBinaries(); err != nil {
		return err
	}
	args, err := c.buildQemuCmdline()
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, c.qemuBinPath, args...)
	log.Debugf("%v", cmd.Args)
	if !c.gui {
		cmd.Stdin = c.stdin
		cmd.Stdout = c.stdout
		cmd.Stderr = c.stderr
	}
	return cmd.Run()
}

func (c *config) buildQemuCmdline() ([]string, error) {
	var qemuArgs []string
	qemuArgs = append(qemuArgs, "-smp", fmt.Sprintf("%d", c.cpus))
	qemuArgs = append(qemuArgs, "-m", fmt.Sprintf("%d", c.memory))
	qemuArgs = append(qemuArgs, "-uuid", c.uuid.String())

	var goArch string
	switch c.arch {
	case "aarch64":
		goArch = "arm64"
	case "x86_64":
		goArch = "amd64"
	default:
		return nil, fmt.Errorf("%s is an unsupported architecture", c.arch)
	}

	accel := c.accel
	if goArch != runtime.GOARCH {
		log.Infof("Disable acceleration as %s != %s", c.arch, runtime.GOARCH)
		accel = ""
	}
	switch {
	case c.arch == "aarch64" && accel != "":
		qemuArgs = append(qemuArgs, "-cpu", "host", "-machine", fmt.Sprintf("virt,accel=%s", accel))
	case c.arch == "aarch64":
		qemuArgs = append(qemuArgs, "-cpu", "cortex-a57", "-machine", "virt")
	case accel != "":
		qemuArgs = append(qemuArgs, "-machine", fmt.Sprintf("q35,accel=%s", accel))
	default:
		qemuArgs = append(qemuArgs, "-machine", "q35")
	}

	if c.bios != "" {
		qemuArgs = append(qemuArgs, "-bios", c.bios)
	}

	qemuArgs = append(qemuArgs, "-drive", "file="+c.path+",format=raw,index=0,media=disk")

	if !c.gui {
		qemuArgs = append(qemuArgs, "-nographic")
	}
	return append(qemuArgs, c.args...), nil
}

func (c *config) discoverBinaries() error {
	if c.qemuBinPath != "" {
		return nil
	}
	t, err := exec.LookTool("qemu-system-" + c.arch)
	if err != nil {
		return fmt.Errorf("Unable to find qemu-system-%s within the $PATH: %w", c.arch, err)
	}
	c.qemuBinPath = t.Path()
	return nil
}

func HaveKVM() bool {
	_, err := os.Stat("/dev/kvm")
	return !os.IsNotExist(err)
}
