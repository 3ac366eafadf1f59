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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stone-arbor/secdata/enrich"
	"github.com/stone-arbor/secdata/schwab"
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Attach a post-filing share price to each filing",
	Long: `The price sub-command looks up, for every distinct filed date in each
per-ticker file, the closing price on the first trading day after the filing
became public. Prices come from the Schwab market data API; if no OAuth token
is available an interactive authorization flow is started.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		session, err := schwab.LoadSession(viper.GetString("schwab.credentials"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not load schwab credentials")
		}

		client := schwab.New(session)

		if err := enrich.AddPrices(ctx, tickerSplitDir(), tickerPriceDir(), client); err != nil {
			log.Fatal().Err(err).Msg("could not add prices to ticker files")
		}

		log.Info().Str("OutputDir", tickerPriceDir()).Msg("prices attached")
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
}
