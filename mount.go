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
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"go.linka.cloud/alma/pkg/exec"
)

// mountStack keeps track of the mounted filesystems so they can be
// unmounted in reverse order.
type mountStack struct {
	root    string
	targets []string
}

func newMountStack(workdir string) (*mountStack, error) {
	root := filepath.Join(workdir, "alma-"+uuid.New().String())
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, err
	}
	return &mountStack{root: root}, nil
}

func (m *mountStack) path(p string) string {
	return filepath.Join(m.root, p)
}

func (m *mountStack) mount(ctx context.Context, fs *Filesystem, target string, opts ...string) error {
	p := m.path(target)
	if err := os.MkdirAll(p, os.ModePerm); err != nil {
		return err
	}
	logrus.Infof("mounting %s to %s", fs, p)
	if err := fs.Mount(ctx, p, opts...); err != nil {
		return err
	}
	m.targets = append(m.targets, p)
	return nil
}

func (m *mountStack) unmount(ctx context.Context) error {
	var merr error
	for i := len(m.targets) - 1; i >= 0; i-- {
		logrus.Infof("unmounting %s", m.targets[i])
		merr = multierr.Append(merr, exec.Run(ctx, "umount", m.targets[i]))
	}
	m.targets = nil
	return merr
}

// close unmounts everything and removes the mount point. Nothing is
// removed if an unmount failed.
func (m *mountStack) close(ctx context.Context) error {
	if err := m.unmount(ctx); err != nil {
		return err
	}
	return os.RemoveAll(m.root)
}
