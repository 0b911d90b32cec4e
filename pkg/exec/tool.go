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

package exec

import (
	"context"
	"fmt"
)

// Tool is an external program identified by its name and, once resolved,
// its absolute path.
type Tool struct {
	name string
	path string
}

// NewTool returns a Tool invoked by name, leaving the lookup to the
// operating system at run time.
func NewTool(name string) *Tool {
	return &Tool{name: name, path: name}
}

// LookTool resolves name in $PATH.
func LookTool(name string) (*Tool, error) {
	p, err := LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("tool %s not found: %w", name, err)
	}
	return &Tool{name: name, path: p}, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Path() string {
	return t.path
}

// Execute starts a new invocation of the tool. Nothing runs until
// Command.Run is called.
func (t *Tool) Execute() *Command {
	return &Command{tool: t}
}

// Command is a single invocation of a Tool being built.
type Command struct {
	tool *Tool
	args []string
}

func (c *Command) Arg(arg string) *Command {
	c.args = append(c.args, arg)
	return c
}

func (c *Command) Args(args ...string) *Command {
	c.args = append(c.args, args...)
	return c
}

// Arguments returns a copy of the arguments appended so far.
func (c *Command) Arguments() []string {
	return append([]string(nil), c.args...)
}

// Run executes the command synchronously and returns once the process
// has exited.
func (c *Command) Run(ctx context.Context) error {
	return Run(ctx, c.tool.path, c.args...)
}

func (c *Command) String() string {
	s := c.tool.name
	for _, v := range c.args {
		s += " " + v
	}
	return s
}
