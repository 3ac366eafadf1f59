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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "secdata",
	Short: "secdata builds Bloomberg-style financial statement tables from SEC XBRL filings",
	Long: `secdata is a command line utility that turns the SEC's quarterly
financial statement data sets (XBRL numeric facts and submission metadata)
into per-company annual and quarterly statement tables resembling a
Bloomberg terminal export.

The pipeline runs in stages, each available as its own sub-command:

	* combine  - concatenate quarterly num/sub fragments and join them
	* split    - break the joined fact table into per-ticker files
	* price    - attach a post-filing share price to every filing
	* simplify - restrict files to the canonical column set
	* pivot    - reshape each ticker into wide statement tables

Run all stages together with the run sub-command. Finished tables can be
loaded into a PostgreSQL warehouse (load) and summarized (info).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.secdata.toml)")
	rootCmd.PersistentFlags().String("input-dir", "", "directory containing extracted SEC financial statement data sets")
	rootCmd.PersistentFlags().String("output-dir", "", "directory pipeline artifacts are written to")
	infoCmd.PersistentFlags().String("dbUrl", "", "database connection string")

	if err := viper.BindPFlag("dirs.input", rootCmd.PersistentFlags().Lookup("input-dir")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for input-dir failed")
	}
	if err := viper.BindPFlag("dirs.output", rootCmd.PersistentFlags().Lookup("output-dir")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for output-dir failed")
	}
	if err := viper.BindPFlag("DBUrl", infoCmd.PersistentFlags().Lookup("dbUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for dbUrl failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".secdata" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".secdata")
	}

	viper.SetDefault("dirs.input", "data/input_data")
	viper.SetDefault("dirs.output", "data/output_data")
	viper.SetDefault("sec.user_agent", "secdata/1.0 (data library builder)")
	viper.SetDefault("schwab.credentials", "config.env")

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
