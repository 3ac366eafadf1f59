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

// Package combine concatenates the per-filing num.tsv and sub.tsv fragments
// of an SEC financial statement bulk extract into single tables and joins
// facts to their submission metadata.
package combine

import (
	"context"
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// DefaultBatchSize bounds how many fact rows the merge stage holds in memory
// at once.
const DefaultBatchSize = 100_000

// NumRecord is one raw fact from a num.tsv fragment, restricted to the
// columns the pipeline carries forward. Everything stays text until the
// simplify stage coerces types.
type NumRecord struct {
	Adsh  string `csv:"adsh"`
	Tag   string `csv:"tag"`
	DDate string `csv:"ddate"`
	Qtrs  string `csv:"qtrs"`
	Value string `csv:"value"`
	Dimn  string `csv:"dimn"`
}

// Submission is one filing from a sub.tsv fragment with the ticker symbol
// attached from the SEC company directory. Ticker stays empty when the CIK
// has no directory entry.
type Submission struct {
	Adsh   string `csv:"adsh"`
	Ticker string `csv:"ticker"`
	Form   string `csv:"form"`
	CIK    string `csv:"cik"`
	Filed  string `csv:"filed"`
}

// JoinedRow is a fact joined to its submission metadata, the row shape of
// the combined table the splitter consumes.
type JoinedRow struct {
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
}

// findFragments walks inputDir collecting every file with the given name
// (one per filing submission).
func findFragments(inputDir, name string) ([]string, error) {
	fragments := make([]string, 0, 64)
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), name) {
			fragments = append(fragments, path)
		}
		return nil
	})
	return fragments, err
}

func tsvReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

func tsvWriter(w io.Writer) *gocsv.SafeCSVWriter {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	return gocsv.NewSafeCSVWriter(writer)
}

// Facts combines every num.tsv fragment under inputDir into one long fact
// table at outputFile, keeping only the selected columns. A fragment that
// fails to parse is logged and skipped; all rows of readable fragments are
// preserved.
func Facts(inputDir, outputFile string) error {
	fragments, err := findFragments(inputDir, "num.tsv")
	if err != nil {
		return err
	}
	if len(fragments) == 0 {
		log.Warn().Str("InputDir", inputDir).Msg("no num.tsv fragments found")
		return nil
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := tsvWriter(out)
	numRows := 0
	wroteHeader := false
	for _, fragment := range fragments {
		fh, err := os.Open(fragment)
		if err != nil {
			log.Error().Err(err).Str("FileName", fragment).Msg("cannot open num.tsv fragment")
			continue
		}

		records := make([]*NumRecord, 0, 4096)
		err = gocsv.UnmarshalCSV(tsvReader(fh), &records)
		fh.Close()
		if err != nil {
			log.Error().Err(err).Str("FileName", fragment).Msg("cannot parse num.tsv fragment")
			continue
		}

		if !wroteHeader {
			err = gocsv.MarshalCSV(&records, writer)
			wroteHeader = true
		} else {
			err = gocsv.MarshalCSVWithoutHeaders(&records, writer)
		}
		if err != nil {
			return err
		}
		numRows += len(records)
	}

	log.Info().Int("NumFragments", len(fragments)).Int("NumRows", numRows).
		Str("FileName", outputFile).Msg("combined num.tsv fragments")
	return nil
}

// Submissions combines every sub.tsv fragment under inputDir, attaches the
// ticker symbol from the SEC company directory, and writes the submission
// metadata table to outputFile. Directory failures do not abort the
// combination; unresolved CIKs simply carry an empty ticker.
func Submissions(ctx context.Context, inputDir, outputFile string) error {
	fragments, err := findFragments(inputDir, "sub.tsv")
	if err != nil {
		return err
	}
	if len(fragments) == 0 {
		log.Warn().Str("InputDir", inputDir).Msg("no sub.tsv fragments found")
		return nil
	}

	directory, err := TickerDirectory(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not fetch ticker directory, tickers will be empty")
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := tsvWriter(out)
	numRows := 0
	wroteHeader := false
	for _, fragment := range fragments {
		fh, err := os.Open(fragment)
		if err != nil {
			log.Error().Err(err).Str("FileName", fragment).Msg("cannot open sub.tsv fragment")
			continue
		}

		records := make([]*Submission, 0, 256)
		err = gocsv.UnmarshalCSV(tsvReader(fh), &records)
		fh.Close()
		if err != nil {
			log.Error().Err(err).Str("FileName", fragment).Msg("cannot parse sub.tsv fragment")
			continue
		}

		for _, record := range records {
			if directory != nil {
				if ticker, ok := directory.Get(record.CIK); ok {
					record.Ticker = ticker
				}
			}
		}

		if !wroteHeader {
			err = gocsv.MarshalCSV(&records, writer)
			wroteHeader = true
		} else {
			err = gocsv.MarshalCSVWithoutHeaders(&records, writer)
		}
		if err != nil {
			return err
		}
		numRows += len(records)
	}

	log.Info().Int("NumFragments", len(fragments)).Int("NumRows", numRows).
		Str("FileName", outputFile).Msg("combined sub.tsv fragments")
	return nil
}

// Merge left-joins the combined fact table to the combined submission table
// on accession number, streaming facts in bounded batches so memory stays
// proportional to the batch size plus the submission table.
func Merge(numFile, subFile, outputFile string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	subFh, err := os.Open(subFile)
	if err != nil {
		return err
	}
	submissions := make([]*Submission, 0, 4096)
	err = gocsv.UnmarshalCSV(tsvReader(subFh), &submissions)
	subFh.Close()
	if err != nil {
		return err
	}

	byAdsh := make(map[string]*Submission, len(submissions))
	for _, submission := range submissions {
		if _, ok := byAdsh[submission.Adsh]; !ok {
			byAdsh[submission.Adsh] = submission
		}
	}

	numFh, err := os.Open(numFile)
	if err != nil {
		return err
	}
	defer numFh.Close()

	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer out.Close()
	writer := tsvWriter(out)

	factChan := make(chan NumRecord, batchSize)
	parseErr := make(chan error, 1)
	go func() {
		parseErr <- gocsv.UnmarshalDecoderToChan(gocsv.NewSimpleDecoderFromCSVReader(tsvReader(numFh)), factChan)
	}()

	batch := make([]*JoinedRow, 0, batchSize)
	wroteHeader := false
	numRows := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		var err error
		if !wroteHeader {
			err = gocsv.MarshalCSV(&batch, writer)
			wroteHeader = true
		} else {
			err = gocsv.MarshalCSVWithoutHeaders(&batch, writer)
		}
		numRows += len(batch)
		batch = batch[:0]
		return err
	}

	for fact := range factChan {
		joined := &JoinedRow{
			Adsh:  fact.Adsh,
			Tag:   fact.Tag,
			DDate: fact.DDate,
			Qtrs:  fact.Qtrs,
			Value: fact.Value,
			Dimn:  fact.Dimn,
		}
		if submission, ok := byAdsh[fact.Adsh]; ok {
			joined.Ticker = submission.Ticker
			joined.Form = submission.Form
			joined.CIK = submission.CIK
			joined.Filed = submission.Filed
		}
		batch = append(batch, joined)
		if len(batch) >= batchSize {
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

	log.Info().Int("NumRows", numRows).Str("FileName", outputFile).Msg("merged num and sub tables")
	return nil
}
