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

// Package schwab implements the Schwab market-data API client used to price
// tickers after their filing dates: OAuth session management against a flat
// credential file, and a rate-limited price history lookup.
package schwab

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	defaultAuthorizeURL = "https://api.schwabapi.com/v1/oauth/authorize"
	defaultTokenURL     = "https://api.schwabapi.com/v1/oauth/token"

	// access tokens deactivate after 30 minutes; refresh just before
	tokenRefreshInterval = 29 * time.Minute
)

var (
	ErrAuthorization = errors.New("authorization failed")
	ErrBadRedirect   = errors.New("redirect URL does not contain an authorization code")
)

// Session holds the OAuth credential state for the Schwab API. It is backed
// by a flat key=value file that is rewritten on every token refresh so a
// later run can resume without re-authorizing.
type Session struct {
	Path string

	AppKey      string
	AppSecret   string
	RedirectURI string

	AccessToken   string
	RefreshToken  string
	LastTokenTime time.Time

	// overridable for tests
	AuthorizeURL string
	TokenURL     string

	client *resty.Client
}

func (session *Session) api() *resty.Client {
	if session.client == nil {
		session.client = resty.New()
	}
	return session.client
}

// LoadSession reads the credential file at path, creating a blank skeleton
// when it does not exist. Blank application credentials are gathered
// interactively and persisted so the user is not asked again.
func LoadSession(path string) (*Session, error) {
	session := &Session{
		Path:         path,
		AuthorizeURL: defaultAuthorizeURL,
		TokenURL:     defaultTokenURL,
		client:       resty.New(),
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("FileName", path).Msg("credential file not found, creating a new one")
		if err := session.Save(); err != nil {
			return nil, err
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "=") {
			continue
		}
		key, val, _ := strings.Cut(line, "=")
		values[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}

	session.AppKey = values["APP_KEY"]
	session.AppSecret = values["APP_SECRET"]
	session.RedirectURI = values["REDIRECT_URI"]
	session.AccessToken = values["ACCESS_TOKEN"]
	session.RefreshToken = values["REFRESH_TOKEN"]
	if ts := values["LAST_TOKEN_TIME"]; ts != "" {
		if lastTokenTime, err := time.Parse(time.RFC3339, ts); err == nil {
			session.LastTokenTime = lastTokenTime
		}
	}

	if err := session.promptMissingCredentials(); err != nil {
		return nil, err
	}

	// persist any newly provided values
	if err := session.Save(); err != nil {
		return nil, err
	}

	return session, nil
}

func (session *Session) promptMissingCredentials() error {
	fields := make([]huh.Field, 0, 3)
	if session.AppKey == "" {
		fields = append(fields, huh.NewInput().
			Title("Enter your Schwab APP_KEY:").Value(&session.AppKey))
	}
	if session.AppSecret == "" {
		fields = append(fields, huh.NewInput().
			Title("Enter your Schwab APP_SECRET:").Value(&session.AppSecret))
	}
	if session.RedirectURI == "" {
		fields = append(fields, huh.NewInput().
			Title("Enter your Schwab REDIRECT_URI:").Value(&session.RedirectURI))
	}
	if len(fields) == 0 {
		return nil
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return fmt.Errorf("%w: gathering application credentials: %s", ErrAuthorization, err)
	}
	return nil
}

// Save rewrites the credential file with the current session state.
func (session *Session) Save() error {
	lastTokenTime := ""
	if !session.LastTokenTime.IsZero() {
		lastTokenTime = session.LastTokenTime.Format(time.RFC3339)
	}

	content := fmt.Sprintf("APP_KEY=%s\nAPP_SECRET=%s\nREDIRECT_URI=%s\nACCESS_TOKEN=%s\nREFRESH_TOKEN=%s\nLAST_TOKEN_TIME=%s\n",
		session.AppKey, session.AppSecret, session.RedirectURI,
		session.AccessToken, session.RefreshToken, lastTokenTime)

	return os.WriteFile(session.Path, []byte(content), 0600)
}

// NeedsRefresh reports whether the access token is missing or older than the
// refresh interval.
func (session *Session) NeedsRefresh() bool {
	if session.AccessToken == "" || session.LastTokenTime.IsZero() {
		return true
	}
	return time.Since(session.LastTokenTime) > tokenRefreshInterval
}

// Token returns a valid bearer token, refreshing or re-authorizing as
// needed.
func (session *Session) Token(ctx context.Context) (string, error) {
	if session.AccessToken == "" {
		var err error
		if session.RefreshToken == "" {
			err = session.Authorize(ctx)
		} else {
			err = session.Refresh(ctx)
		}
		if err != nil {
			return "", err
		}
		return session.AccessToken, nil
	}

	if session.NeedsRefresh() {
		if err := session.Refresh(ctx); err != nil {
			return "", err
		}
	}

	return session.AccessToken, nil
}

// Refresh exchanges the refresh token for a new token pair. A rejected
// refresh escalates to the full interactive authorization flow.
func (session *Session) Refresh(ctx context.Context) error {
	log.Info().Msg("refreshing Schwab tokens")

	resp, err := session.api().R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+session.basicCredentials()).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": session.RefreshToken,
		}).
		Post(session.TokenURL)
	if err != nil {
		log.Error().Err(err).Msg("token refresh request failed")
		return session.Authorize(ctx)
	}

	if resp.StatusCode() != 200 {
		log.Error().Int("StatusCode", resp.StatusCode()).Bytes("Body", resp.Body()).
			Msg("error refreshing access token")
		return session.Authorize(ctx)
	}

	session.applyTokenResponse(resp.Body())
	log.Info().Msg("token successfully refreshed")
	return session.Save()
}

// Authorize runs the interactive authorization-code flow: the user opens the
// printed URL in a browser, approves access, and pastes the redirect URL
// back. This is the one user-visible failure point in the pipeline; callers
// should treat an error here as fatal.
func (session *Session) Authorize(ctx context.Context) error {
	authURL := fmt.Sprintf("%s?client_id=%s&redirect_uri=%s",
		session.AuthorizeURL, session.AppKey, session.RedirectURI)

	fmt.Println(
		lipgloss.NewStyle().
			Width(76).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Render(fmt.Sprintf("%s\n\nOpen this URL in your browser and authenticate:\n\n%s",
				lipgloss.NewStyle().Bold(true).Render("SCHWAB AUTHORIZATION"),
				authURL)),
	)

	var redirectURL string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Paste the ENTIRE redirect URL from your browser:").
			Value(&redirectURL),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("%w: no interactive channel available: %s", ErrAuthorization, err)
	}

	code, err := extractCode(redirectURL)
	if err != nil {
		return err
	}

	log.Info().Msg("requesting initial tokens from Schwab")
	resp, err := session.api().R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+session.basicCredentials()).
		SetFormData(map[string]string{
			"grant_type":   "authorization_code",
			"code":         code,
			"redirect_uri": session.RedirectURI,
		}).
		Post(session.TokenURL)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAuthorization, err)
	}

	if resp.StatusCode() != 200 {
		log.Error().Int("StatusCode", resp.StatusCode()).Bytes("Body", resp.Body()).
			Msg("initial token request failed")
		return ErrAuthorization
	}

	session.applyTokenResponse(resp.Body())
	log.Info().Msg("successfully retrieved tokens")
	return session.Save()
}

// extractCode pulls the authorization code out of the pasted redirect URL.
// Schwab terminates the code with an encoded '@' (%40) which must be
// restored before the exchange.
func extractCode(redirectURL string) (string, error) {
	_, after, found := strings.Cut(redirectURL, "code=")
	if !found {
		return "", ErrBadRedirect
	}
	code, _, found := strings.Cut(after, "%40")
	if !found {
		return "", ErrBadRedirect
	}
	return code + "@", nil
}

func (session *Session) basicCredentials() string {
	return base64.StdEncoding.EncodeToString(
		[]byte(session.AppKey + ":" + session.AppSecret))
}

func (session *Session) applyTokenResponse(body []byte) {
	session.AccessToken = gjson.GetBytes(body, "access_token").String()
	session.RefreshToken = gjson.GetBytes(body, "refresh_token").String()
	session.LastTokenTime = time.Now()
}
