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
	"github.com/spf13/viper"
	"github.com/stone-arbor/secdata/backblaze"
	"github.com/stone-arbor/secdata/pivot"
)

var (
	pivotParquet bool
	pivotUpload  bool
)

// pivotCmd represents the pivot command
var pivotCmd = &cobra.Command{
	Use:   "pivot",
	Short: "Reshape each ticker's facts into wide annual and quarterly tables",
	Long: `The pivot sub-command builds, for every simplified ticker file, an
annual table (12-month flow facts plus matching instant facts) and a quarterly
table (3-month flow facts plus matching instant facts). Each table carries the
period-ending, filing number, and post-filing share price rows followed by one
row per reported tag, with a fixed column per fiscal period bucket.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := pivot.Options{Parquet: pivotParquet}

		if err := pivot.TransformAll(finalTickerDir(), statementTableDir(), opts); err != nil {
			log.Fatal().Err(err).Msg("could not build statement tables")
		}

		log.Info().Str("OutputDir", statementTableDir()).Msg("statement tables written")

		if pivotUpload {
			bucket := viper.GetString("backblaze.bucket")
			dirname := viper.GetString("backblaze.dirname")
			if err := backblaze.UploadDir(statementTableDir(), bucket, dirname); err != nil {
				log.Fatal().Err(err).Msg("could not upload statement tables")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(pivotCmd)
	pivotCmd.Flags().BoolVar(&pivotParquet, "parquet", false, "also write each table as parquet")
	pivotCmd.Flags().BoolVar(&pivotUpload, "upload", false, "upload finished tables to backblaze")
}
