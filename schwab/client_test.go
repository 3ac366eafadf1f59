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
package schwab

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

// testClient builds a price client pointed at a stub server with an already
// valid token so no OAuth traffic happens during the lookup.
func testClient(serverURL string) *Client {
	session := &Session{
		AccessToken:   "test-token",
		RefreshToken:  "test-refresh",
		LastTokenTime: time.Now(),
	}
	return &Client{
		session: session,
		api:     resty.New().SetBaseURL(serverURL),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func millisString(v int64) string {
	return strconv.FormatInt(v, 10)
}

var _ = Describe("PriceOnOrAfter", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		requests []string
	)

	BeforeEach(func() {
		requests = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests = append(requests, r.URL.Query().Get("startDate"))
			handler(w, r)
		}))
		DeferCleanup(server.Close)
	})

	It("returns the close on the requested day", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-token"))
			Expect(r.URL.Query().Get("symbol")).To(Equal("ACME"))
			w.Write([]byte(`{"candles": [{"close": 42.5}]}`))
		}

		client := testClient(server.URL)
		price, err := client.PriceOnOrAfter(context.Background(), "acme",
			time.Date(2021, 10, 30, 0, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(price).To(Equal(42.5))
		Expect(requests).To(HaveLen(1))
	})

	It("advances to the next day when the API has no data", func() {
		attempts := 0
		handler = func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"candles": [{"close": 40}]}`))
		}

		client := testClient(server.URL)
		day := time.Date(2021, 10, 30, 0, 0, 0, 0, time.UTC)
		price, err := client.PriceOnOrAfter(context.Background(), "ACME", day)
		Expect(err).NotTo(HaveOccurred())
		Expect(price).To(Equal(40.0))
		Expect(requests).To(HaveLen(3))

		// third request asked for two days after the original date
		wantMillis := day.AddDate(0, 0, 2).UnixMilli()
		Expect(requests[2]).To(Equal(millisString(wantMillis)))
	})

	It("gives up after six candidate dates", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}

		client := testClient(server.URL)
		price, err := client.PriceOnOrAfter(context.Background(), "ACME",
			time.Date(2021, 10, 30, 0, 0, 0, 0, time.UTC))
		Expect(err).To(MatchError(ErrNoPrice))
		Expect(math.IsNaN(price)).To(BeTrue())
		Expect(requests).To(HaveLen(maxDateAttempts))
	})

	It("does not retry other error classes", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}

		client := testClient(server.URL)
		_, err := client.PriceOnOrAfter(context.Background(), "ACME",
			time.Date(2021, 10, 30, 0, 0, 0, 0, time.UTC))
		Expect(err).To(MatchError(ErrNoPrice))
		Expect(requests).To(HaveLen(1))
	})

	It("treats an empty candle list as no price", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candles": []}`))
		}

		client := testClient(server.URL)
		_, err := client.PriceOnOrAfter(context.Background(), "ACME",
			time.Date(2021, 10, 30, 0, 0, 0, 0, time.UTC))
		Expect(err).To(MatchError(ErrNoPrice))
		Expect(requests).To(HaveLen(1))
	})
})
