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
	"encoding/csv"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// WriteTSV renders the table as a tab-separated artifact. The header row is
// ticker, in_usd, then the complete bucket sequence; buckets without data
// render as empty cells. A degenerate table writes just the header.
func (table *Table) WriteTSV(w io.Writer) error {
	out := csv.NewWriter(w)
	out.Comma = '\t'

	header := make([]string, 0, len(table.Columns)+2)
	header = append(header, "ticker", IndexColumn)
	header = append(header, table.Columns...)
	if err := out.Write(header); err != nil {
		return err
	}

	record := make([]string, 0, len(header))
	for _, row := range table.Rows {
		record = record[:0]
		record = append(record, table.Ticker, row.Label)
		for _, column := range table.Columns {
			record = append(record, row.Cells[column])
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}

// SaveTSV writes the table to fn, replacing any existing file.
func (table *Table) SaveTSV(fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer fh.Close()
	return table.WriteTSV(fh)
}

// TableCell is the long-form parquet schema for statement tables: one record
// per populated (line item, bucket) pair.
type TableCell struct {
	Ticker   string `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LineItem string `parquet:"name=in_usd, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Bucket   string `parquet:"name=bucket, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value    string `parquet:"name=value, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// SaveParquet writes the table in long form to a parquet file.
func (table *Table) SaveParquet(fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(TableCell), 4)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("parquet writer creation failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	numCells := 0
	for _, row := range table.Rows {
		for _, column := range table.Columns {
			value, ok := row.Cells[column]
			if !ok {
				continue
			}
			cell := &TableCell{
				Ticker:   table.Ticker,
				LineItem: row.Label,
				Bucket:   column,
				Value:    value,
			}
			if err := pw.Write(cell); err != nil {
				log.Error().Err(err).Str("Ticker", table.Ticker).Str("LineItem", row.Label).
					Str("Bucket", column).Msg("parquet write failed for cell")
			}
			numCells++
		}
	}

	if err := pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Debug().Int("NumCells", numCells).Str("FileName", fn).Msg("parquet write finished")
	return nil
}
