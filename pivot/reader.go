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
	"errors"
	"io"
	"os"
)

var ErrBadHeader = errors.New("statement table header is malformed")

// ReadTSV parses a statement table previously written with WriteTSV. Empty
// cells stay absent from the row's cell map. A header-only file yields a
// table with no rows and an empty ticker.
func ReadTSV(r io.Reader) (*Table, error) {
	in := csv.NewReader(r)
	in.Comma = '\t'
	in.FieldsPerRecord = -1

	header, err := in.Read()
	if err != nil {
		return nil, err
	}
	if len(header) < 2 || header[0] != "ticker" || header[1] != IndexColumn {
		return nil, ErrBadHeader
	}

	table := &Table{Columns: append([]string{}, header[2:]...)}

	for {
		record, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			return nil, ErrBadHeader
		}

		if table.Ticker == "" {
			table.Ticker = record[0]
		}

		row := Row{Label: record[1], Cells: make(map[string]string, len(table.Columns))}
		for ii, column := range table.Columns {
			idx := ii + 2
			if idx >= len(record) || record[idx] == "" {
				continue
			}
			row.Cells[column] = record[idx]
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// LoadTSV reads a statement table from fn.
func LoadTSV(fn string) (*Table, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ReadTSV(fh)
}
