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
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stone-arbor/secdata/backblaze"
	"github.com/stone-arbor/secdata/combine"
	"github.com/stone-arbor/secdata/enrich"
	"github.com/stone-arbor/secdata/healthcheck"
	"github.com/stone-arbor/secdata/pivot"
	"github.com/stone-arbor/secdata/schwab"
	"github.com/stone-arbor/secdata/simplify"
	"github.com/stone-arbor/secdata/split"
)

var (
	runParquet bool
	runUpload  bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full statement table pipeline",
	Long: `The run sub-command executes every pipeline stage in order: combine,
split, price, simplify, and pivot. Stage timings are logged per stage and a
healthchecks.io ping is sent on completion when healthchecks.id is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		runLogger := log.With().Str("RunID", uuid.New().String()).Logger()
		startTime := time.Now()

		if err := os.MkdirAll(viper.GetString("dirs.output"), 0755); err != nil {
			runLogger.Fatal().Err(err).Msg("could not create output directory")
		}

		session, err := schwab.LoadSession(viper.GetString("schwab.credentials"))
		if err != nil {
			runLogger.Fatal().Err(err).Msg("could not load schwab credentials")
		}
		priceClient := schwab.New(session)

		inputDir := viper.GetString("dirs.input")

		stages := []struct {
			name string
			fn   func() error
		}{
			{"combine-num", func() error { return combine.Facts(inputDir, combinedNumFile()) }},
			{"combine-sub", func() error { return combine.Submissions(ctx, inputDir, combinedSubFile()) }},
			{"merge", func() error {
				return combine.Merge(combinedNumFile(), combinedSubFile(), mergedFile(), combine.DefaultBatchSize)
			}},
			{"split", func() error { return split.ByTicker(mergedFile(), tickerSplitDir(), split.DefaultBatchSize) }},
			{"price", func() error { return enrich.AddPrices(ctx, tickerSplitDir(), tickerPriceDir(), priceClient) }},
			{"simplify", func() error { return simplify.Files(tickerPriceDir(), finalTickerDir()) }},
			{"pivot", func() error {
				return pivot.TransformAll(finalTickerDir(), statementTableDir(), pivot.Options{Parquet: runParquet})
			}},
		}

		for _, stage := range stages {
			stageStart := time.Now()
			if err := stage.fn(); err != nil {
				notifyFailure(runLogger)
				runLogger.Fatal().Err(err).Str("Stage", stage.name).Msg("pipeline stage failed")
			}
			runLogger.Info().Str("Stage", stage.name).
				Str("RunTime", durafmt.Parse(time.Since(stageStart)).String()).
				Msg("pipeline stage finished")
		}

		if runUpload {
			bucket := viper.GetString("backblaze.bucket")
			dirname := viper.GetString("backblaze.dirname")
			if err := backblaze.UploadDir(statementTableDir(), bucket, dirname); err != nil {
				notifyFailure(runLogger)
				runLogger.Fatal().Err(err).Msg("could not upload statement tables")
			}
		}

		if checkID := viper.GetString("healthchecks.id"); checkID != "" {
			if err := healthcheck.Ping(checkID); err != nil {
				runLogger.Warn().Err(err).Msg("could not ping healthcheck")
			}
		}

		runLogger.Info().Str("RunTime", durafmt.Parse(time.Since(startTime)).String()).Msg("pipeline finished")
	},
}

func notifyFailure(logger zerolog.Logger) {
	if checkID := viper.GetString("healthchecks.id"); checkID != "" {
		if err := healthcheck.Fail(checkID); err != nil {
			logger.Warn().Err(err).Msg("could not signal healthcheck failure")
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runParquet, "parquet", false, "also write each table as parquet")
	runCmd.Flags().BoolVar(&runUpload, "upload", false, "upload finished tables to backblaze")
}
