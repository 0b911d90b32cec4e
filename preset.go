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

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"go.linka.cloud/alma/pkg/exec"
)

const presetScript = "alma-preset.sh"

// Preset extends an appliance with packages and a script run inside the
// new system once it is bootstrapped.
type Preset struct {
	Packages []string `toml:"packages"`
	Script   string   `toml:"script"`
	// EnvironmentVariables must be set when the preset is applied and are
	// passed on to the script.
	EnvironmentVariables []string `toml:"environment_variables"`

	path string
}

// LoadPreset reads a TOML preset file.
func LoadPreset(path string) (*Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p := &Preset{path: path}
	d := toml.NewDecoder(f)
	d.DisallowUnknownFields()
	if err := d.Decode(p); err != nil {
		return nil, fmt.Errorf("error decoding preset %q: %w", path, err)
	}
	if len(p.Packages) == 0 && strings.TrimSpace(p.Script) == "" {
		return nil, fmt.Errorf("%s: preset has neither packages nor script", path)
	}
	return p, nil
}

// LoadPresets loads the preset files in paths. A directory stands for
// the *.toml files it contains, in lexical order.
func LoadPresets(paths ...string) ([]*Preset, error) {
	var presets []*Preset
	for _, v := range paths {
		i, err := os.Stat(v)
		if err != nil {
			return nil, err
		}
		files := []string{v}
		if i.IsDir() {
			if files, err = filepath.Glob(filepath.Join(v, "*.toml")); err != nil {
				return nil, err
			}
			if len(files) == 0 {
				return nil, fmt.Errorf("%s: no preset found", v)
			}
		}
		for _, f := range files {
			p, err := LoadPreset(f)
			if err != nil {
				return nil, err
			}
			presets = append(presets, p)
		}
	}
	return presets, nil
}

// Path is the file the preset was loaded from.
func (p *Preset) Path() string {
	return p.path
}

// environment resolves the required variables from the current process.
func (p *Preset) environment() ([]string, error) {
	var (
		env  []string
		merr error
	)
	for _, v := range p.EnvironmentVariables {
		val, ok := os.LookupEnv(v)
		if !ok {
			merr = multierr.Append(merr, fmt.Errorf("%s: environment variable %s is not set", p.path, v))
			continue
		}
		env = append(env, v+"="+val)
	}
	return env, merr
}

func presetPackages(presets []*Preset) []string {
	var pkgs []string
	for _, v := range presets {
		pkgs = append(pkgs, v.Packages...)
	}
	return pkgs
}

func checkPresets(presets []*Preset) error {
	var merr error
	for _, v := range presets {
		_, err := v.environment()
		merr = multierr.Append(merr, err)
	}
	return merr
}

func scriptArgs(root string, env []string) []string {
	args := []string{root}
	if len(env) > 0 {
		args = append(append(args, "env"), env...)
	}
	return append(args, "/bin/bash", "/"+presetScript)
}

// apply runs the preset script inside the system mounted at root.
func (p *Preset) apply(ctx context.Context, root string) error {
	if strings.TrimSpace(p.Script) == "" {
		return nil
	}
	env, err := p.environment()
	if err != nil {
		return err
	}
	logrus.Infof("running preset %s", p.path)
	s := filepath.Join(root, presetScript)
	if err := os.WriteFile(s, []byte(p.Script), 0755); err != nil {
		return err
	}
	defer os.Remove(s)
	return exec.Run(ctx, "arch-chroot", scriptArgs(root, env)...)
}
