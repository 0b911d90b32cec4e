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

package qemu

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQemuCmdline(t *testing.T) {
	c := newConfig("/dev/sdb", WithArch("x86_64"), WithAccel("kvm"), WithCPUs(2), WithMemory(2048), WithArgs("-snapshot"))
	args, err := c.buildQemuCmdline()
	require.NoError(t, err)

	assert.Equal(t, []string{"-smp", "2", "-m", "2048", "-uuid", c.uuid.String()}, args[:6])
	assert.Contains(t, args, "file=/dev/sdb,format=raw,index=0,media=disk")
	assert.Contains(t, args, "-nographic")
	assert.Equal(t, "-snapshot", args[len(args)-1])
	if runtime.GOARCH == "amd64" {
		assert.Contains(t, args, "q35,accel=kvm")
	} else {
		assert.Contains(t, args, "q35")
	}
}

func TestBuildQemuCmdlineDefaults(t *testing.T) {
	c := newConfig("disk.img", WithArch("x86_64"), WithGUI())
	assert.Equal(t, uint(1), c.cpus)
	assert.Equal(t, uint(4096), c.memory)
	args, err := c.buildQemuCmdline()
	require.NoError(t, err)
	assert.NotContains(t, args, "-nographic")
}

func TestBuildQemuCmdlineUnsupportedArch(t *testing.T) {
	c := newConfig("disk.img", WithArch("s390x"))
	_, err := c.buildQemuCmdline()
	require.Error(t, err)
}
