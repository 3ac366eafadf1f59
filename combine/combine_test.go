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
package combine_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stone-arbor/secdata/combine"
)

func writeFile(path, content string) {
	Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
	Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
}

func readJoined(path string) []*combine.JoinedRow {
	fh, err := os.Open(path)
	Expect(err).NotTo(HaveOccurred())
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.Comma = '\t'

	rows := make([]*combine.JoinedRow, 0, 16)
	Expect(gocsv.UnmarshalCSV(reader, &rows)).To(Succeed())
	return rows
}

var _ = Describe("Facts", func() {
	var dir, outFile string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		outFile = filepath.Join(dir, "combined_num.tsv")
	})

	It("concatenates fragments from every quarter directory", func() {
		writeFile(filepath.Join(dir, "2021q3", "num.tsv"),
			"adsh\ttag\tversion\tddate\tqtrs\tuom\tdimh\tiprx\tvalue\tdimn\n"+
				"adsh-1\tRevenues\tus-gaap/2021\t20210630\t1\tUSD\t0x0\t0\t100\t0\n")
		writeFile(filepath.Join(dir, "2021q4", "num.tsv"),
			"adsh\ttag\tversion\tddate\tqtrs\tuom\tdimh\tiprx\tvalue\tdimn\n"+
				"adsh-2\tRevenues\tus-gaap/2021\t20210930\t1\tUSD\t0x0\t0\t110\t0\n")

		Expect(combine.Facts(dir, outFile)).To(Succeed())

		raw, err := os.ReadFile(outFile)
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
		Expect(lines).To(HaveLen(3))
		// only the selected columns survive
		Expect(lines[0]).To(Equal("adsh\ttag\tddate\tqtrs\tvalue\tdimn"))
		Expect(lines[1]).To(Equal("adsh-1\tRevenues\t20210630\t1\t100\t0"))
		Expect(lines[2]).To(Equal("adsh-2\tRevenues\t20210930\t1\t110\t0"))
	})

	It("does nothing when no fragments exist", func() {
		Expect(combine.Facts(dir, outFile)).To(Succeed())
		Expect(outFile).NotTo(BeAnExistingFile())
	})
})

var _ = Describe("Merge", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("left-joins facts to their submissions on accession number", func() {
		numFile := filepath.Join(dir, "num.tsv")
		subFile := filepath.Join(dir, "sub.tsv")
		outFile := filepath.Join(dir, "joined.tsv")

		writeFile(numFile,
			"adsh\ttag\tddate\tqtrs\tvalue\tdimn\n"+
				"adsh-1\tRevenues\t20210930\t4\t100\t0\n"+
				"adsh-1\tAssets\t20210930\t0\t500\t0\n"+
				"adsh-orphan\tRevenues\t20211231\t4\t90\t0\n")
		writeFile(subFile,
			"adsh\tticker\tform\tcik\tfiled\n"+
				"adsh-1\tacme\t10-K\t320193\t20211029\n")

		Expect(combine.Merge(numFile, subFile, outFile, 2)).To(Succeed())

		rows := readJoined(outFile)
		Expect(rows).To(HaveLen(3))

		Expect(rows[0].Ticker).To(Equal("acme"))
		Expect(rows[0].Form).To(Equal("10-K"))
		Expect(rows[0].Filed).To(Equal("20211029"))
		Expect(rows[0].Tag).To(Equal("Revenues"))

		Expect(rows[1].Ticker).To(Equal("acme"))
		Expect(rows[1].Tag).To(Equal("Assets"))

		// unmatched facts keep empty submission columns
		Expect(rows[2].Adsh).To(Equal("adsh-orphan"))
		Expect(rows[2].Ticker).To(BeEmpty())
		Expect(rows[2].Filed).To(BeEmpty())
	})

	It("keeps the first submission when an accession number repeats", func() {
		numFile := filepath.Join(dir, "num.tsv")
		subFile := filepath.Join(dir, "sub.tsv")
		outFile := filepath.Join(dir, "joined.tsv")

		writeFile(numFile,
			"adsh\ttag\tddate\tqtrs\tvalue\tdimn\n"+
				"adsh-1\tRevenues\t20210930\t4\t100\t0\n")
		writeFile(subFile,
			"adsh\tticker\tform\tcik\tfiled\n"+
				"adsh-1\tacme\t10-K\t320193\t20211029\n"+
				"adsh-1\tother\t10-K\t999999\t20211030\n")

		Expect(combine.Merge(numFile, subFile, outFile, 0)).To(Succeed())

		rows := readJoined(outFile)
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Ticker).To(Equal("acme"))
	})
})
