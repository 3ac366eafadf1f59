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
package data

import (
	"fmt"
	"strconv"
)

// Years retained in the statement tables. Facts dated outside this range are
// silently excluded from both the annual and quarterly pivots.
var Years = []string{"2020", "2021", "2022", "2023", "2024", "2025"}

// AnnualBucket maps a YYYYMMDD period end date to its fiscal year column
// (fy_2021, ...). The second return is false when the date does not land in
// a retained year; the row is then dropped from the annual table.
func AnnualBucket(ddate int) (string, bool) {
	year, ok := yearOf(ddate)
	if !ok {
		return "", false
	}
	return "fy_" + year, true
}

// QuarterBucket maps a YYYYMMDD period end date to its fiscal quarter column
// (q1_2021, ...). Months 1-3 fall in Q1, 4-6 in Q2, 7-9 in Q3, everything
// else lands in Q4. Unparseable dates yield no bucket.
func QuarterBucket(ddate int) (string, bool) {
	year, ok := yearOf(ddate)
	if !ok {
		return "", false
	}

	s := strconv.Itoa(ddate)
	month := 0
	if len(s) >= 6 {
		month, _ = strconv.Atoi(s[4:6])
	}

	var q int
	switch {
	case month >= 1 && month <= 3:
		q = 1
	case month >= 4 && month <= 6:
		q = 2
	case month >= 7 && month <= 9:
		q = 3
	default:
		q = 4
	}

	return fmt.Sprintf("q%d_%s", q, year), true
}

// AnnualColumns returns the complete ordered column set for an annual table.
// Columns are fixed regardless of which buckets carry data.
func AnnualColumns() []string {
	cols := make([]string, 0, len(Years))
	for _, year := range Years {
		cols = append(cols, "fy_"+year)
	}
	return cols
}

// QuarterColumns returns the complete ordered column set for a quarterly
// table, year-major and quarter-minor (q1_2020 ... q4_2025).
func QuarterColumns() []string {
	cols := make([]string, 0, len(Years)*4)
	for _, year := range Years {
		for q := 1; q <= 4; q++ {
			cols = append(cols, fmt.Sprintf("q%d_%s", q, year))
		}
	}
	return cols
}

// yearOf extracts the leading four digits of a YYYYMMDD integer the same way
// the upstream extracts use a string prefix, so a malformed short date never
// matches a retained year.
func yearOf(ddate int) (string, bool) {
	s := strconv.Itoa(ddate)
	if len(s) < 4 {
		return "", false
	}
	year := s[:4]
	for _, retained := range Years {
		if year == retained {
			return year, true
		}
	}
	return "", false
}
