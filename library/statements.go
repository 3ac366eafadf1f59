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
package library

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/stone-arbor/secdata/pivot"
)

// Statement table period types as stored in the warehouse.
const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
)

// LoadTable upserts every populated cell of a statement table into the
// statements relation. The whole table loads in one transaction so a
// re-import replaces the prior state atomically.
func (myLibrary *Library) LoadTable(ctx context.Context, table *pivot.Table, periodType string) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Str("Ticker", table.Ticker).Msg("error committing statement transaction to database")
		}
	}()

	sql := `INSERT INTO statements (
		"ticker",
		"period_type",
		"bucket",
		"line_item",
		"value"
	) VALUES (
		$1, $2, $3, $4, $5
	) ON CONFLICT ON CONSTRAINT statements_pkey
	DO UPDATE SET
		value = EXCLUDED.value,
		imported_at = now();`

	numCells := 0
	for _, row := range table.Rows {
		for _, column := range table.Columns {
			value, ok := row.Cells[column]
			if !ok {
				continue
			}
			if _, err := tx.Exec(ctx, sql, table.Ticker, periodType, column, row.Label, value); err != nil {
				log.Error().Err(err).Str("Ticker", table.Ticker).Str("LineItem", row.Label).
					Str("Bucket", column).Msg("error saving statement cell to database")
				continue
			}
			numCells++
		}
	}

	log.Debug().Str("Ticker", table.Ticker).Str("PeriodType", periodType).
		Int("NumCells", numCells).Msg("loaded statement table")
	return nil
}
