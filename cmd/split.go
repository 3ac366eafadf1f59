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
	"github.com/stone-arbor/secdata/split"
)

var splitBatchSize int

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split the combined fact table into per-ticker files",
	Long: `The split sub-command streams the joined fact table produced by
combine and distributes its rows into one TSV per ticker symbol. Rows whose
submission could not be matched to a ticker are dropped. Rows are buffered in
bounded batches so the full table never has to fit in memory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := split.ByTicker(mergedFile(), tickerSplitDir(), splitBatchSize); err != nil {
			log.Fatal().Err(err).Msg("could not split fact table by ticker")
		}

		log.Info().Str("OutputDir", tickerSplitDir()).Msg("per-ticker files written")
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().IntVar(&splitBatchSize, "batch-size", split.DefaultBatchSize, "rows buffered before flushing ticker files")
}
