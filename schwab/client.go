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
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.schwabapi.com"
	priceHistoryPath = "/marketdata/v1/pricehistory"
	maxDateAttempts  = 6
	callsPerMinute   = 115
)

// ErrNoPrice marks a lookup that found no usable price. Callers degrade to a
// missing price rather than aborting the batch.
var ErrNoPrice = errors.New("no price available")

// Client fetches historical closing prices from the Schwab market-data API.
// Calls are serialized through a rate limiter so the external call budget is
// respected regardless of how many lookups a run performs.
type Client struct {
	session *Session
	api     *resty.Client
	limiter *rate.Limiter
}

// New creates a price client bound to an authorized session.
func New(session *Session) *Client {
	return &Client{
		session: session,
		api:     resty.New().SetBaseURL(defaultBaseURL),
		limiter: rate.NewLimiter(rate.Every(time.Minute/callsPerMinute), 1),
	}
}

type priceHistory struct {
	Candles []struct {
		Close float64 `json:"close"`
	} `json:"candles"`
}

// PriceOnOrAfter returns the closing price for symbol on day, or the first
// subsequent trading day within a bounded number of day-advances. A "no data
// for this day" response (HTTP 400) advances to the next candidate date; any
// other failure class is not retried and reports ErrNoPrice. The returned
// price is NaN whenever err is non-nil.
func (client *Client) PriceOnOrAfter(ctx context.Context, symbol string, day time.Time) (float64, error) {
	symbol = strings.ToUpper(symbol)

	for attempt := 0; attempt < maxDateAttempts; attempt++ {
		candidate := day.AddDate(0, 0, attempt)

		if err := client.limiter.Wait(ctx); err != nil {
			return math.NaN(), err
		}

		token, err := client.session.Token(ctx)
		if err != nil {
			return math.NaN(), err
		}

		millis := strconv.FormatInt(candidate.UnixMilli(), 10)
		resp, err := client.api.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Accept", "application/json").
			SetQueryParams(map[string]string{
				"symbol":        symbol,
				"periodType":    "month",
				"frequencyType": "daily",
				"startDate":     millis,
				"endDate":       millis,
			}).
			Get(priceHistoryPath)
		if err != nil {
			log.Error().Err(err).Str("Symbol", symbol).Msg("price history request failed")
			return math.NaN(), ErrNoPrice
		}

		if resp.StatusCode() == 400 {
			log.Warn().Str("Symbol", symbol).Str("Date", candidate.Format("2006-01-02")).
				Int("Attempt", attempt+1).Int("MaxAttempts", maxDateAttempts).
				Msg("no price data for date, trying next day")
			continue
		}

		if resp.StatusCode() >= 300 {
			log.Error().Int("StatusCode", resp.StatusCode()).Str("Symbol", symbol).
				Msg("price history returned an invalid HTTP response")
			return math.NaN(), ErrNoPrice
		}

		var history priceHistory
		if err := json.Unmarshal(resp.Body(), &history); err != nil {
			log.Error().Err(err).Str("Symbol", symbol).Msg("could not parse price history response")
			return math.NaN(), ErrNoPrice
		}

		if len(history.Candles) == 0 {
			log.Error().Str("Symbol", symbol).Str("Date", candidate.Format("2006-01-02")).
				Msg("price history response has no candles")
			return math.NaN(), ErrNoPrice
		}

		return history.Candles[0].Close, nil
	}

	log.Error().Str("Symbol", symbol).Int("MaxAttempts", maxDateAttempts).
		Msg("all price lookup attempts failed")
	return math.NaN(), ErrNoPrice
}
