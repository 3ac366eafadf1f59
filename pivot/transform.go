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
package pivot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/stone-arbor/secdata/data"
)

// Options control optional output formats produced alongside the TSV
// artifacts.
type Options struct {
	Parquet bool
}

// TransformAll builds annual and quarterly statement tables for every
// per-ticker fact file in inputDir. Each ticker transforms independently; a
// failure on one file is logged and the rest continue.
func TransformAll(inputDir, outputDir string, opts Options) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".tsv") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, fn := range files {
		ticker := strings.TrimSuffix(fn, filepath.Ext(fn))
		if err := TransformTicker(filepath.Join(inputDir, fn), outputDir, ticker, opts); err != nil {
			log.Error().Err(err).Str("Ticker", ticker).Str("FileName", fn).Msg("statement transform failed")
		}
	}

	log.Info().Int("NumTickers", len(files)).Str("OutputDir", outputDir).Msg("statement tables written")
	return nil
}

// TransformTicker builds both statement tables for a single ticker file.
// When a period subset is empty the corresponding artifact is skipped
// entirely rather than written with zero rows.
func TransformTicker(inputPath, outputDir, ticker string, opts Options) error {
	facts, err := data.ReadFactFile(inputPath)
	if err != nil {
		return err
	}

	if annual := Annual(ticker, facts); annual != nil {
		if err := saveTable(annual, outputDir, fmt.Sprintf("%s_annual", ticker), opts); err != nil {
			return err
		}
	}

	if quarterly := Quarterly(ticker, facts); quarterly != nil {
		if err := saveTable(quarterly, outputDir, fmt.Sprintf("%s_quarterly", ticker), opts); err != nil {
			return err
		}
	}

	return nil
}

func saveTable(table *Table, outputDir, stem string, opts Options) error {
	if err := table.SaveTSV(filepath.Join(outputDir, stem+".tsv")); err != nil {
		return err
	}
	if opts.Parquet {
		if err := table.SaveParquet(filepath.Join(outputDir, stem+".parquet")); err != nil {
			return err
		}
	}
	return nil
}
