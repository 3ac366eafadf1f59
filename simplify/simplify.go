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

// Package simplify restricts per-ticker fact files to the canonical column
// set consumed by the statement transform and normalizes their numeric
// columns.
package simplify

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// row is the canonical 11-column shape of a finalized per-ticker file.
type row struct {
	Ticker string `csv:"ticker"`
	Form   string `csv:"form"`
	CIK    string `csv:"cik"`
	Adsh   string `csv:"adsh"`
	Tag    string `csv:"tag"`
	DDate  string `csv:"ddate"`
	Qtrs   string `csv:"qtrs"`
	Value  string `csv:"value"`
	Dimn   string `csv:"dimn"`
	Filed  string `csv:"filed"`
	Price  string `csv:"price"`
}

// Files rewrites every per-ticker file in inputDir to outputDir with only
// the canonical columns. Unparseable numeric fields (including the literal
// "Unknown" marker) are blanked rather than raised.
func Files(inputDir, outputDir string) error {
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
		if err := simplifyFile(filepath.Join(inputDir, fn), filepath.Join(outputDir, fn)); err != nil {
			log.Error().Err(err).Str("FileName", fn).Msg("simplify failed")
		}
	}

	log.Info().Int("NumFiles", len(files)).Str("OutputDir", outputDir).Msg("simplified ticker files")
	return nil
}

func simplifyFile(inputPath, outputPath string) error {
	fh, err := os.Open(inputPath)
	if err != nil {
		return err
	}

	reader := csv.NewReader(fh)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	rows := make([]*row, 0, 1024)
	err = gocsv.UnmarshalCSV(reader, &rows)
	fh.Close()
	if err != nil {
		return err
	}

	for _, r := range rows {
		r.CIK = normalizeInt(r.CIK)
		r.DDate = normalizeInt(r.DDate)
		r.Qtrs = normalizeInt(r.Qtrs)
		r.Dimn = normalizeInt(r.Dimn)
		r.Filed = normalizeInt(r.Filed)
		r.Value = normalizeFloat(r.Value)
		r.Price = normalizeFloat(r.Price)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = '\t'
	return gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(csvWriter))
}

func normalizeInt(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.Atoi(s); err != nil {
		return ""
	}
	return s
}

func normalizeFloat(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return ""
	}
	return s
}
