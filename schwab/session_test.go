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
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Session", func() {
	var credFile string

	BeforeEach(func() {
		credFile = filepath.Join(GinkgoT().TempDir(), "config.env")
	})

	It("round-trips credentials through the flat file", func() {
		now := time.Now().Truncate(time.Second)
		session := &Session{
			Path:          credFile,
			AppKey:        "key",
			AppSecret:     "secret",
			RedirectURI:   "https://127.0.0.1",
			AccessToken:   "access",
			RefreshToken:  "refresh",
			LastTokenTime: now,
		}
		Expect(session.Save()).To(Succeed())

		loaded, err := LoadSession(credFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.AppKey).To(Equal("key"))
		Expect(loaded.AppSecret).To(Equal("secret"))
		Expect(loaded.RedirectURI).To(Equal("https://127.0.0.1"))
		Expect(loaded.AccessToken).To(Equal("access"))
		Expect(loaded.RefreshToken).To(Equal("refresh"))
		Expect(loaded.LastTokenTime.Equal(now)).To(BeTrue())
	})

	Describe("NeedsRefresh", func() {
		It("is true without a token", func() {
			session := &Session{}
			Expect(session.NeedsRefresh()).To(BeTrue())
		})

		It("is true once the token ages out", func() {
			session := &Session{
				AccessToken:   "access",
				LastTokenTime: time.Now().Add(-30 * time.Minute),
			}
			Expect(session.NeedsRefresh()).To(BeTrue())
		})

		It("is false for a fresh token", func() {
			session := &Session{
				AccessToken:   "access",
				LastTokenTime: time.Now(),
			}
			Expect(session.NeedsRefresh()).To(BeFalse())
		})
	})

	Describe("Refresh", func() {
		It("exchanges the refresh token and persists the new pair", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.FormValue("grant_type")).To(Equal("refresh_token"))
				Expect(r.FormValue("refresh_token")).To(Equal("old-refresh"))
				w.Write([]byte(`{"access_token": "new-access", "refresh_token": "new-refresh"}`))
			}))
			DeferCleanup(server.Close)

			session := &Session{
				Path:         credFile,
				AppKey:       "key",
				AppSecret:    "secret",
				RefreshToken: "old-refresh",
				TokenURL:     server.URL,
			}
			Expect(session.Refresh(context.Background())).To(Succeed())
			Expect(session.AccessToken).To(Equal("new-access"))
			Expect(session.RefreshToken).To(Equal("new-refresh"))
			Expect(session.NeedsRefresh()).To(BeFalse())
		})
	})

	Describe("extractCode", func() {
		It("extracts the code up to the encoded at-sign", func() {
			code, err := extractCode("https://127.0.0.1/?code=C.ABC123%40&session=xyz")
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal("C.ABC123@"))
		})

		It("rejects a redirect without a code", func() {
			_, err := extractCode("https://127.0.0.1/?error=denied")
			Expect(err).To(MatchError(ErrBadRedirect))
		})

		It("rejects a code without the terminating marker", func() {
			_, err := extractCode("https://127.0.0.1/?code=C.ABC123")
			Expect(err).To(MatchError(ErrBadRedirect))
		})
	})
})
