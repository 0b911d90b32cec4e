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

package main

import (
	"github.com/c2h5oh/datasize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"go.linka.cloud/alma"
)

// rootFSFlag never rejects a value: anything that does not parse falls
// back to ext4.
type rootFSFlag struct {
	fs alma.FilesystemType
}

func (f *rootFSFlag) Set(s string) error {
	v, err := alma.ParseFilesystemType(s)
	if err != nil {
		logrus.Warnf("%v: using %s", err, alma.Ext4)
		v = alma.Ext4
	}
	f.fs = v
	return nil
}

func (f *rootFSFlag) String() string {
	return f.fs.String()
}

func (f *rootFSFlag) Type() string {
	return "filesystem"
}

func (f *rootFSFlag) Get() alma.FilesystemType {
	return f.fs
}

func addRootFSFlag(flags *pflag.FlagSet, f *rootFSFlag, usage string) {
	flags.VarP(f, "rootfs", "f", usage)
}

func parseSize(s string) (uint64, error) {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return uint64(v), nil
}
