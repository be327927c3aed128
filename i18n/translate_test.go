// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/dailyfe/dailyfe/core/cookie"
	"codeberg.org/dailyfe/dailyfe/server/assets"
)

const jaPO = `msgid ""
msgstr ""
"Language: ja\n"
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=1; plural=0;\n"

msgid "Follow"
msgstr "フォロー"

msgid "{{.Count}} upvote"
msgid_plural "{{.Count}} upvotes"
msgstr[0] "{{.Count}} 件の賛成"
`

// Setup mutates package state, so these tests run sequentially.
func TestTranslations(t *testing.T) {
	assets.FS = fstest.MapFS{
		"po/ja.po":        {Data: []byte(jaPO)},
		"po/dailyfe.pot":  {Data: []byte(`msgid ""`)},
		"po/not-a-locale": {Data: []byte("ignored")},
	}

	require.NoError(t, Setup())

	assert.Equal(t, []language.Tag{language.English, language.Japanese}, Languages())

	ja := WithTag(context.Background(), language.Japanese)
	en := WithTag(context.Background(), language.English)

	assert.Equal(t, "フォロー", Tr(ja, "Follow"))
	assert.Equal(t, "Follow", Tr(en, "Follow"))
	assert.Equal(t, "Block", Tr(ja, "Block"), "missing keys fall back to the msgid")

	assert.Equal(t, "3 件の賛成", TrN(ja, "{{.Count}} upvote", "{{.Count}} upvotes", 3, "Count", 3))
	assert.Equal(t, "1 upvote", TrN(en, "{{.Count}} upvote", "{{.Count}} upvotes", 1, "Count", 1))
	assert.Equal(t, "2 upvotes", TrN(en, "{{.Count}} upvote", "{{.Count}} upvotes", 2, "Count", 2))

	assert.Equal(t, "フォロー", MsgKey("Follow").Tr(ja))
	assert.Equal(t, "Welcome, Ido!", Tr(en, "Welcome, {{.Name}}!", "Name", "Ido"))

	t.Run("FromRequest", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
			cookie string
			header string
			want   language.Tag
		}{
			{"Query parameter", "/?lang=ja", "", "", language.Japanese},
			{"Cookie", "/", "ja", "", language.Japanese},
			{"Accept-Language", "/", "", "ja-JP,ja;q=0.9", language.Japanese},
			{"Auto ignores cookie", "/?lang=auto", "ja", "en-US", language.English},
			{"Unsupported", "/", "", "fr-FR", language.English},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := httptest.NewRequest(http.MethodGet, tt.target, nil)
				if tt.cookie != "" {
					r.AddCookie(&http.Cookie{Name: string(cookie.LangCookie), Value: tt.cookie})
				}

				if tt.header != "" {
					r.Header.Set("Accept-Language", tt.header)
				}

				base, _ := FromRequest(r).Base()
				want, _ := tt.want.Base()
				assert.Equal(t, want, base)
			})
		}
	})
}

func TestTagFromDefaultsToBase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, baseTag, TagFrom(context.Background()))
	assert.Equal(t, language.Japanese, TagFrom(WithTag(context.Background(), language.Japanese)))
}
