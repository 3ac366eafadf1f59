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
	"path/filepath"

	"github.com/spf13/viper"
)

// Artifact locations inside the output directory. Every stage reads the
// previous stage's directory so the sub-commands compose with run.

func outputPath(elem ...string) string {
	return filepath.Join(append([]string{viper.GetString("dirs.output")}, elem...)...)
}

func combinedNumFile() string {
	return outputPath("combined_num.tsv")
}

func combinedSubFile() string {
	return outputPath("combined_sub.tsv")
}

func mergedFile() string {
	return outputPath("updated_combined_num.tsv")
}

func tickerSplitDir() string {
	return outputPath("ticker_split")
}

func tickerPriceDir() string {
	return outputPath("ticker_with_price")
}

func finalTickerDir() string {
	return outputPath("final_ticker_files")
}

func statementTableDir() string {
	return outputPath("statement_tables")
}
