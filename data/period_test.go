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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stone-arbor/secdata/data"
)

var _ = Describe("AnnualBucket", func() {
	It("maps retained years to fiscal year buckets", func() {
		bucket, ok := data.AnnualBucket(20211231)
		Expect(ok).To(BeTrue())
		Expect(bucket).To(Equal("fy_2021"))
	})

	It("rejects dates outside the retained range", func() {
		_, ok := data.AnnualBucket(20191231)
		Expect(ok).To(BeFalse())

		_, ok = data.AnnualBucket(20261231)
		Expect(ok).To(BeFalse())
	})

	It("rejects malformed short dates", func() {
		_, ok := data.AnnualBucket(202)
		Expect(ok).To(BeFalse())

		_, ok = data.AnnualBucket(0)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("QuarterBucket", func() {
	DescribeTable("maps the month to a calendar quarter",
		func(ddate int, expected string) {
			bucket, ok := data.QuarterBucket(ddate)
			Expect(ok).To(BeTrue())
			Expect(bucket).To(Equal(expected))
		},
		Entry("january", 20210131, "q1_2021"),
		Entry("march", 20210331, "q1_2021"),
		Entry("april", 20210430, "q2_2021"),
		Entry("june", 20210630, "q2_2021"),
		Entry("july", 20210731, "q3_2021"),
		Entry("september", 20210930, "q3_2021"),
		Entry("october", 20211031, "q4_2021"),
		Entry("december", 20211231, "q4_2021"),
	)

	It("treats an unparseable month as fourth quarter", func() {
		// year prefix parses but there is no month portion
		bucket, ok := data.QuarterBucket(2021)
		Expect(ok).To(BeTrue())
		Expect(bucket).To(Equal("q4_2021"))
	})

	It("rejects dates outside the retained range", func() {
		_, ok := data.QuarterBucket(20190331)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Column sequences", func() {
	It("covers every retained year once", func() {
		Expect(data.AnnualColumns()).To(Equal([]string{
			"fy_2020", "fy_2021", "fy_2022", "fy_2023", "fy_2024", "fy_2025",
		}))
	})

	It("orders quarters year-major", func() {
		cols := data.QuarterColumns()
		Expect(cols).To(HaveLen(24))
		Expect(cols[:5]).To(Equal([]string{"q1_2020", "q2_2020", "q3_2020", "q4_2020", "q1_2021"}))
	})
})
