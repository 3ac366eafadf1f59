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

// Package split buckets the joined fact table into one file per ticker
// symbol. Rows stream through in bounded batches and only one output handle
// is open at any moment, so neither the row count nor the ticker count
// dictates the memory or descriptor footprint.
package split

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/stone-arbor/secdata/combine"
)

// DefaultBatchSize is the number of rows buffered before per-ticker files
// are flushed.
const DefaultBatchSize = 200_000

// ByTicker splits the joined table at inputFile into per-ticker TSVs under
// outputDir. Rows with a blank ticker are dropped. Re-running appends are
// avoided by truncating any prior output for a ticker on its first write of
// the run; later batches for the same ticker append.
func ByTicker(inputFile, outputDir string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	fh, err := os.Open(inputFile)
	if err != nil {
		return err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	rowChan := make(chan combine.JoinedRow, batchSize)
	parseErr := make(chan error, 1)
	go func() {
		parseErr <- gocsv.UnmarshalDecoderToChan(gocsv.NewSimpleDecoderFromCSVReader(reader), rowChan)
	}()

	bucket := make(map[string][]*combine.JoinedRow)
	started := make(map[string]struct{})
	buffered := 0
	numRows := 0

	flush := func() error {
		for ticker, rows := range bucket {
			if err := writeTickerRows(outputDir, ticker, rows, started); err != nil {
				return err
			}
			numRows += len(rows)
		}
		clear(bucket)
		buffered = 0
		return nil
	}

	for row := range rowChan {
		ticker := strings.TrimSpace(row.Ticker)
		if ticker == "" {
			continue
		}
		rowCopy := row
		bucket[ticker] = append(bucket[ticker], &rowCopy)
		buffered++

		if buffered >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := <-parseErr; err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	log.Info().Int("NumRows", numRows).Int("NumTickers", len(started)).
		Str("OutputDir", outputDir).Msg("split joined table by ticker")
	return nil
}

// writeTickerRows appends one batch to a single ticker's file, writing the
// header only when this run first touches the ticker. The handle is closed
// before returning so at most one output file is ever open.
func writeTickerRows(outputDir, ticker string, rows []*combine.JoinedRow, started map[string]struct{}) error {
	path := filepath.Join(outputDir, ticker+".tsv")

	_, isStarted := started[ticker]
	flags := os.O_CREATE | os.O_WRONLY
	if isStarted {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	fh, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	defer fh.Close()

	csvWriter := csv.NewWriter(fh)
	csvWriter.Comma = '\t'
	writer := gocsv.NewSafeCSVWriter(csvWriter)

	if isStarted {
		err = gocsv.MarshalCSVWithoutHeaders(&rows, writer)
	} else {
		err = gocsv.MarshalCSV(&rows, writer)
		started[ticker] = struct{}{}
	}
	return err
}
