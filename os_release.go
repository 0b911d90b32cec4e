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

package alma

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ReleaseArch Release = "arch"
)

type Release string

type OSRelease struct {
	ID         Release
	Name       string
	PrettyName string
	BuildID    string
}

func ParseOSRelease(s string) (OSRelease, error) {
	env, err := godotenv.Parse(strings.NewReader(s))
	if err != nil {
		return OSRelease{}, err
	}
	o := OSRelease{
		ID:         Release(strings.ToLower(env["ID"])),
		Name:       env["NAME"],
		PrettyName: env["PRETTY_NAME"],
		BuildID:    env["BUILD_ID"],
	}
	return o, nil
}

// ReadOSRelease reads the os-release file of the system mounted at root.
func ReadOSRelease(root string) (OSRelease, error) {
	var (
		b   []byte
		err error
	)
	for _, v := range []string{"/etc/os-release", "/usr/lib/os-release"} {
		if b, err = os.ReadFile(filepath.Join(root, v)); err == nil {
			break
		}
	}
	if err != nil {
		return OSRelease{}, fmt.Errorf("%s does not look like an appliance root filesystem: %w", root, err)
	}
	return ParseOSRelease(string(b))
}
