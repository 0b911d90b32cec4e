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
	"fmt"

	"github.com/spf13/cobra"

	"go.linka.cloud/alma"
)

var (
	cmdVersion = &cobra.Command{
		Use:   "version",
		Short: "Print alma version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := alma.Version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alma %s %s\n", v, alma.Arch)
			if alma.BuildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", alma.BuildDate)
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(cmdVersion)
}
