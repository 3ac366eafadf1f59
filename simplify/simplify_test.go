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
package simplify_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stone-arbor/secdata/simplify"
)

var _ = Describe("Files", func() {
	var inputDir, outputDir string

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		inputDir = filepath.Join(dir, "in")
		outputDir = filepath.Join(dir, "out")
		Expect(os.MkdirAll(inputDir, 0755)).To(Succeed())
	})

	It("restricts files to the canonical column set", func() {
		content := "ticker\tform\tcik\tadsh\ttag\tddate\tqtrs\tvalue\tdimn\tfiled\tprice\textra\n" +
			"acme\t10-K\t320193\tadsh-1\tRevenues\t20210930\t4\t100\t0\t20211029\t152.57\tdropme\n"
		Expect(os.WriteFile(filepath.Join(inputDir, "acme.tsv"), []byte(content), 0644)).To(Succeed())

		Expect(simplify.Files(inputDir, outputDir)).To(Succeed())

		raw, err := os.ReadFile(filepath.Join(outputDir, "acme.tsv"))
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
		Expect(lines[0]).To(Equal("ticker\tform\tcik\tadsh\ttag\tddate\tqtrs\tvalue\tdimn\tfiled\tprice"))
		Expect(lines[1]).To(Equal("acme\t10-K\t320193\tadsh-1\tRevenues\t20210930\t4\t100\t0\t20211029\t152.57"))
	})

	It("blanks numeric columns that fail to parse", func() {
		content := "ticker\tform\tcik\tadsh\ttag\tddate\tqtrs\tvalue\tdimn\tfiled\tprice\n" +
			"acme\t10-K\tUnknown\tadsh-1\tRevenues\tUnknown\tx\tabc\t0\t20211029\t\n"
		Expect(os.WriteFile(filepath.Join(inputDir, "acme.tsv"), []byte(content), 0644)).To(Succeed())

		Expect(simplify.Files(inputDir, outputDir)).To(Succeed())

		raw, err := os.ReadFile(filepath.Join(outputDir, "acme.tsv"))
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
		Expect(lines[1]).To(Equal("acme\t10-K\t\tadsh-1\tRevenues\t\t\t\t0\t20211029\t"))
	})

	It("skips non-tsv directory entries", func() {
		Expect(os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("ignore"), 0644)).To(Succeed())

		Expect(simplify.Files(inputDir, outputDir)).To(Succeed())

		entries, err := os.ReadDir(outputDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})
})
