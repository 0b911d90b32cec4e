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
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// CreateImage creates a sparse image file of the given size.
func CreateImage(path string, size uint64, overwrite bool) error {
	if size == 0 {
		return fmt.Errorf("image size must be greater than zero")
	}
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("%s already exists, use --overwrite to replace it", path)
		}
		logrus.Warnf("overwriting %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	logrus.Infof("creating %s image %s", humanize.IBytes(size), path)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Truncate(int64(size))
}
