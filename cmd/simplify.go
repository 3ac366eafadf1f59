// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stone-arbor/secdata/simplify"
)

// simplifyCmd represents the simplify command
var simplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Restrict per-ticker files to the canonical column set",
	Long: `The simplify sub-command rewrites each priced ticker file keeping only
the columns the pivot stage consumes, coercing numeric columns as it goes.
Values that fail to parse become missing rather than aborting the run.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := simplify.Files(tickerPriceDir(), finalTickerDir()); err != nil {
			log.Fatal().Err(err).Msg("could not simplify ticker files")
		}

		log.Info().Str("OutputDir", finalTickerDir()).Msg("ticker files simplified")
	},
}

func init() {
	rootCmd.AddCommand(simplifyCmd)
}
