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
package pivot_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stone-arbor/secdata/pivot"
)

var _ = Describe("Statement table artifacts", func() {
	var table *pivot.Table

	BeforeEach(func() {
		table = &pivot.Table{
			Ticker:  "acme",
			Columns: []string{"fy_2020", "fy_2021"},
			Rows: []pivot.Row{
				{Label: pivot.AnnualPeriodLabel, Cells: map[string]string{"fy_2021": "20211231"}},
				{Label: "Revenues", Cells: map[string]string{"fy_2021": "100"}},
			},
		}
	})

	It("writes the ticker and index columns ahead of the bucket columns", func() {
		var buf bytes.Buffer
		Expect(table.WriteTSV(&buf)).To(Succeed())

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(Equal("ticker\tin_usd\tfy_2020\tfy_2021"))
		Expect(lines[1]).To(Equal("acme\t12 Months Ending\t\t20211231"))
		Expect(lines[2]).To(Equal("acme\tRevenues\t\t100"))
	})

	It("writes only the header for a degenerate table", func() {
		var buf bytes.Buffer
		empty := &pivot.Table{Ticker: "acme", Columns: []string{"fy_2020", "fy_2021"}}
		Expect(empty.WriteTSV(&buf)).To(Succeed())
		Expect(strings.TrimRight(buf.String(), "\n")).To(Equal("ticker\tin_usd\tfy_2020\tfy_2021"))
	})

	It("round-trips through ReadTSV", func() {
		var buf bytes.Buffer
		Expect(table.WriteTSV(&buf)).To(Succeed())

		parsed, err := pivot.ReadTSV(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(table))
	})

	It("rejects input with a foreign header", func() {
		_, err := pivot.ReadTSV(strings.NewReader("adsh\ttag\tvalue\n"))
		Expect(err).To(MatchError(pivot.ErrBadHeader))
	})
})
