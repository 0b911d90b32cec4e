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
	"path/filepath"
	"testing"

	"go.linka.cloud/alma/pkg/exec"
)

type call struct {
	name string
	args []string
}

func (c call) last() string {
	if len(c.args) == 0 {
		return ""
	}
	return c.args[len(c.args)-1]
}

type recorder struct {
	calls []call
	err   error
	// fail makes every call of the named command return the error.
	fail map[string]error
	// out is what RunOut prints, keyed by "name lastArg" or by name.
	out map[string]string
	// onCall runs before the result of a call is returned.
	onCall func(c call)
}

// record replaces the exec hooks for the duration of the test. Every
// binary is reported as installed.
func record(t *testing.T, err error) *recorder {
	r := &recorder{err: err, fail: map[string]error{}, out: map[string]string{}}
	run, runOut, runInteractive, lookPath := exec.Run, exec.RunOut, exec.RunInteractive, exec.LookPath
	exec.Run = r.run
	exec.RunInteractive = r.run
	exec.RunOut = func(ctx context.Context, c string, args ...string) (string, string, error) {
		if err := r.run(ctx, c, args...); err != nil {
			return "", "", err
		}
		if o, ok := r.out[c+" "+r.calls[len(r.calls)-1].last()]; ok {
			return o, "", nil
		}
		return r.out[c], "", nil
	}
	exec.LookPath = func(file string) (string, error) {
		return filepath.Join("/usr/bin", file), nil
	}
	t.Cleanup(func() {
		exec.Run, exec.RunOut, exec.RunInteractive, exec.LookPath = run, runOut, runInteractive, lookPath
	})
	return r
}

func (r *recorder) run(_ context.Context, c string, args ...string) error {
	v := call{name: c, args: append([]string(nil), args...)}
	r.calls = append(r.calls, v)
	if r.onCall != nil {
		r.onCall(v)
	}
	if err, ok := r.fail[c]; ok {
		return err
	}
	return r.err
}

func (r *recorder) names() []string {
	var n []string
	for _, v := range r.calls {
		n = append(n, v.name)
	}
	return n
}

func (r *recorder) find(name string) []call {
	var found []call
	for _, v := range r.calls {
		if v.name == name {
			found = append(found, v)
		}
	}
	return found
}
