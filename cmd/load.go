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
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stone-arbor/secdata/library"
	"github.com/stone-arbor/secdata/pivot"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load finished statement tables into the database",
	Long: `The load sub-command reads the statement tables produced by pivot and
upserts their cells into the PostgreSQL warehouse so the library can be queried
and summarized with info.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myLibrary, err := library.NewFromDB(ctx, viper.GetString("DBUrl"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to library")
		}
		defer myLibrary.Close()

		files, err := filepath.Glob(filepath.Join(statementTableDir(), "*.tsv"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not list statement tables")
		}
		sort.Strings(files)

		numLoaded := 0
		for _, fn := range files {
			var periodType string
			switch {
			case strings.HasSuffix(fn, "_annual.tsv"):
				periodType = library.PeriodAnnual
			case strings.HasSuffix(fn, "_quarterly.tsv"):
				periodType = library.PeriodQuarterly
			default:
				log.Warn().Str("FileName", fn).Msg("skipping file with unrecognized period suffix")
				continue
			}

			table, err := pivot.LoadTSV(fn)
			if err != nil {
				log.Error().Err(err).Str("FileName", fn).Msg("could not read statement table")
				continue
			}

			if table.Ticker == "" {
				// header-only table, nothing to upsert
				continue
			}

			if err := myLibrary.LoadTable(ctx, table, periodType); err != nil {
				log.Error().Err(err).Str("Ticker", table.Ticker).Str("FileName", fn).
					Msg("could not load statement table")
				continue
			}
			numLoaded++
		}

		log.Info().Int("NumTables", numLoaded).Msg("statement tables loaded")
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
