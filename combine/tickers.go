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
package combine

import (
	"context"
	"errors"
	"strings"

	"github.com/alphadose/haxmap"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const tickerDirectoryURL = "https://www.sec.gov/include/ticker.txt"

var (
	ErrDirectoryStatus = errors.New("ticker directory returned an invalid status code")

	tickerMap *haxmap.Map[string, string]
)

func init() {
	tickerMap = haxmap.New[string, string]()
}

// TickerDirectory fetches the SEC company directory and returns a CIK to
// ticker symbol map. The map is cached for the life of the process; CIKs
// without a directory entry stay unmapped and resolve to an empty ticker.
// When a CIK lists several tickers the first listed symbol wins.
func TickerDirectory(ctx context.Context) (*haxmap.Map[string, string], error) {
	if tickerMap.Len() > 0 {
		return tickerMap, nil
	}

	client := resty.New()
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("User-Agent", viper.GetString("sec.user_agent")).
		SetHeader("Accept-Encoding", "gzip, deflate").
		Get(tickerDirectoryURL)
	if err != nil {
		log.Error().Err(err).Str("URL", tickerDirectoryURL).Msg("ticker directory request failed")
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("URL", tickerDirectoryURL).
			Msg("ticker directory returned an invalid HTTP response")
		return nil, ErrDirectoryStatus
	}

	numEntries := 0
	for _, line := range strings.Split(string(resp.Body()), "\n") {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) != 2 {
			continue
		}
		ticker := strings.TrimSpace(fields[0])
		cik := strings.TrimSpace(fields[1])
		if ticker == "" || cik == "" {
			continue
		}
		if _, ok := tickerMap.Get(cik); !ok {
			tickerMap.Set(cik, ticker)
			numEntries++
		}
	}

	log.Info().Int("NumEntries", numEntries).Msg("loaded SEC ticker directory")
	return tickerMap, nil
}
