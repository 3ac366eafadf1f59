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
package data_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stone-arbor/secdata/data"
)

var _ = Describe("ReadFactFile", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	writeFactFile := func(content string) string {
		fn := filepath.Join(dir, "acme.tsv")
		Expect(os.WriteFile(fn, []byte(content), 0644)).To(Succeed())
		return fn
	}

	It("parses a well-formed fact file", func() {
		fn := writeFactFile(
			"ticker\tform\tcik\tadsh\ttag\tddate\tqtrs\tvalue\tdimn\tfiled\tprice\n" +
				"acme\t10-K\t320193\t0000320193-21-000105\tRevenues\t20210930\t4\t365817000000\t0\t20211029\t152.57\n")

		facts, err := data.ReadFactFile(fn)
		Expect(err).NotTo(HaveOccurred())
		Expect(facts).To(HaveLen(1))
		Expect(facts[0].Ticker).To(Equal("acme"))
		Expect(facts[0].CIK).To(Equal(int64(320193)))
		Expect(facts[0].DDate).To(Equal(20210930))
		Expect(facts[0].Qtrs).To(Equal(data.QtrsAnnual))
		Expect(facts[0].Value).To(Equal(365817000000.0))
		Expect(facts[0].Price).To(Equal(152.57))
	})

	It("drops exact duplicate rows", func() {
		row := "acme\t10-K\t320193\tadsh-1\tRevenues\t20210930\t4\t100\t0\t20211029\t\n"
		fn := writeFactFile(
			"ticker\tform\tcik\tadsh\ttag\tddate\tqtrs\tvalue\tdimn\tfiled\tprice\n" + row + row)

		facts, err := data.ReadFactFile(fn)
		Expect(err).NotTo(HaveOccurred())
		Expect(facts).To(HaveLen(1))
	})

	It("turns unparseable numerics into missing values instead of failing", func() {
		fn := writeFactFile(
			"ticker\tform\tcik\tadsh\ttag\tddate\tqtrs\tvalue\tdimn\tfiled\tprice\n" +
				"acme\t10-K\tnot-a-cik\tadsh-1\tRevenues\tbad-date\tNaN\toops\t0\t20211029\t\n")

		facts, err := data.ReadFactFile(fn)
		Expect(err).NotTo(HaveOccurred())
		Expect(facts).To(HaveLen(1))
		Expect(facts[0].CIK).To(BeZero())
		Expect(facts[0].DDate).To(BeZero())
		Expect(facts[0].Qtrs).To(Equal(-1))
		Expect(math.IsNaN(facts[0].Value)).To(BeTrue())
		Expect(math.IsNaN(facts[0].Price)).To(BeTrue())
	})
})
