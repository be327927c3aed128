// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const ptBRPO = `msgid ""
msgstr ""
"Language: pt_BR\n"
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=2; plural=(n > 1);\n"

msgid "Unfollow"
msgstr "Deixar de seguir"

msgid "Request ID: {{.ID}}"
msgstr "ID da solicitação: {{.ID}}"

msgid "Broken {{.Count}"
msgstr "Quebrado {{.Count}"

msgid "{{.Count}} comment"
msgid_plural "{{.Count}} comments"
msgstr[0] "{{.Count}} comentário"
msgstr[1] "{{.Count}} comentários"

msgid "{{.Count}}% read"
msgstr "{{.Count}}% lido"
`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := Load(fstest.MapFS{
		"po/pt_BR.po":       {Data: []byte(ptBRPO)},
		"po/ja.po":          {Data: []byte(jaPO)},
		"po/dailyfe.pot":    {Data: []byte(`msgid ""`)},
		"po/xx-invalid!.po": {Data: []byte(`msgid ""`)},
	}, "po")
	require.NoError(t, err)

	return c
}

func TestLoad(t *testing.T) {
	t.Parallel()

	c := loadTestCatalog(t)

	assert.Equal(t, []language.Tag{language.English, language.Japanese, language.MustParse("pt-BR")}, c.Languages())
}

func TestLoadMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := Load(fstest.MapFS{}, "po")
	require.Error(t, err)
}

func TestCatalogMatch(t *testing.T) {
	t.Parallel()

	c := loadTestCatalog(t)

	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"No preference", nil, "en"},
		{"Exact", []string{"pt-BR"}, "pt-BR"},
		{"Region variant", []string{"ja-JP"}, "ja"},
		{"Accept-Language list", []string{"fr-FR,pt;q=0.8"}, "pt-BR"},
		{"First usable wins", []string{"ja", "pt-BR"}, "ja"},
		{"Unsupported", []string{"de"}, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, c.Match(tt.prefs...).String())
		})
	}
}

func TestCatalogTranslate(t *testing.T) {
	t.Parallel()

	c := loadTestCatalog(t)
	ptBR := language.MustParse("pt-BR")

	assert.Equal(t, "Deixar de seguir", c.translate(ptBR, "Unfollow", "", 0, nil))
	assert.Equal(t, "ID da solicitação: 42", c.translate(ptBR, "Request ID: {{.ID}}", "", 0, Vars{"ID": 42}))
	assert.Equal(t, "Block", c.translate(ptBR, "Block", "", 0, nil))
	assert.Equal(t, "2 upvotes", c.translate(ptBR, "{{.Count}} upvote", "{{.Count}} upvotes", 2, Vars{"Count": 2}))
	assert.Equal(t, "50% lido", c.translate(ptBR, "{{.Count}}% read", "", 0, Vars{"Count": 50}), "percent signs are not format verbs")
	assert.Equal(t, "Quebrado {{.Count}", c.translate(ptBR, "Broken {{.Count}", "", 0, nil), "unparsable text is returned as is")
	assert.Equal(t, "Request ID: {{.ID}}", c.translate(language.English, "Request ID: {{.ID}}", "", 0, nil), "missing values keep the text")
}

func TestCatalogStrict(t *testing.T) {
	t.Parallel()

	c := loadTestCatalog(t)
	c.Strict = true

	ja := language.Japanese

	assert.Equal(t, "フォロー", c.translate(ja, "Follow", "", 0, nil))
	assert.Equal(t, "⟦Block⟧", c.translate(ja, "Block", "", 0, nil))
	assert.Equal(t, "⟦Block⟧", c.translate(ja, "Block", "", 0, nil))
	assert.Equal(t, "⟦{{.ID}}⟧", c.translate(language.English, "{{.ID}}", "", 0, nil), "wrapped once when formatting fails too")

	_, seen := c.missing.Load("ja\x00Block")
	assert.True(t, seen)
}

func TestCatalogPluralForms(t *testing.T) {
	t.Parallel()

	c := loadTestCatalog(t)
	ptBR := language.MustParse("pt-BR")

	comments := func(tag language.Tag, n int) string {
		return c.translate(tag, "{{.Count}} comment", "{{.Count}} comments", n, Vars{"Count": n})
	}

	// pt_BR uses plural=(n > 1), so zero is singular.
	assert.Equal(t, "0 comentário", comments(ptBR, 0))
	assert.Equal(t, "1 comentário", comments(ptBR, 1))
	assert.Equal(t, "5 comentários", comments(ptBR, 5))

	// ja has a single form.
	assert.Equal(t, "7 件の賛成", c.translate(language.Japanese, "{{.Count}} upvote", "{{.Count}} upvotes", 7, Vars{"Count": 7}))

	assert.Equal(t, "0 comments", comments(language.English, 0))
}
