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
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stone-arbor/secdata/combine"
)

var mergeBatchSize int

// combineCmd represents the combine command
var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine quarterly num/sub fragments and join them into one fact table",
	Long: `The combine sub-command scans the input directory for extracted SEC
financial statement data sets (one sub-directory per quarter, each holding a
num.tsv and sub.tsv), concatenates the fragments, attaches each submission's
ticker symbol from the SEC CIK directory, and left-joins the numeric facts to
their submissions on adsh. The joined table is the input to split.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if err := os.MkdirAll(viper.GetString("dirs.output"), 0755); err != nil {
			log.Fatal().Err(err).Msg("could not create output directory")
		}

		inputDir := viper.GetString("dirs.input")

		if err := combine.Facts(inputDir, combinedNumFile()); err != nil {
			log.Fatal().Err(err).Msg("could not combine num fragments")
		}

		if err := combine.Submissions(ctx, inputDir, combinedSubFile()); err != nil {
			log.Fatal().Err(err).Msg("could not combine sub fragments")
		}

		if err := combine.Merge(combinedNumFile(), combinedSubFile(), mergedFile(), mergeBatchSize); err != nil {
			log.Fatal().Err(err).Msg("could not merge facts with submissions")
		}

		log.Info().Str("OutputFile", mergedFile()).Msg("combined fact table written")
	},
}

func init() {
	rootCmd.AddCommand(combineCmd)
	combineCmd.Flags().IntVar(&mergeBatchSize, "batch-size", combine.DefaultBatchSize, "rows held in memory per merge batch")
}
