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
	"github.com/stone-arbor/secdata/schwab"
)

// authorizeCmd represents the authorize command
var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Run the Schwab OAuth authorization flow",
	Long: `The authorize sub-command walks through the Schwab OAuth flow and
stores the resulting tokens in the credential file. Use it to mint a fresh
token pair before an unattended pipeline run; price and run refresh tokens
automatically while they remain valid.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		session, err := schwab.LoadSession(viper.GetString("schwab.credentials"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not load schwab credentials")
		}

		if err := session.Authorize(ctx); err != nil {
			log.Fatal().Err(err).Msg("authorization failed")
		}

		log.Info().Msg("authorization complete, tokens saved")
	},
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
}
