// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"text/template"

	"github.com/leonelquinteros/gotext"
	"github.com/leonelquinteros/gotext/plurals"
	"golang.org/x/text/language"
)

// BaseLocale is the language of the msgids. It needs no catalogue.
const BaseLocale = "en"

var baseTag = language.Make(BaseLocale)

// fallback is used before Setup. It translates nothing.
var fallback = &Catalog{tags: []language.Tag{baseTag}, matcher: language.NewMatcher([]language.Tag{baseTag})}

// Catalog is a set of gettext locales and the matcher that picks between them.
type Catalog struct {
	locales map[string]*messages
	tags    []language.Tag
	matcher language.Matcher

	// Strict wraps untranslated text in "⟦...⟧" and logs each missing msgid once.
	Strict bool

	missing   sync.Map // locale + "\x00" + msgid
	templates sync.Map // text -> *template.Template
}

// messages are the parsed entries of one catalogue.
type messages struct {
	entries map[string]*gotext.Translation
	// plural picks the msgstr index for a count. nil uses n != 1.
	plural plurals.Expression
}

func newMessages(d *gotext.Domain) *messages {
	m := &messages{entries: d.GetTranslations()}

	for field := range strings.SplitSeq(d.PluralForms, ";") {
		key, expr, _ := strings.Cut(field, "=")
		if strings.TrimSpace(key) != "plural" {
			continue
		}

		compiled, err := plurals.Compile(strings.TrimSpace(expr))
		if err != nil {
			Logger.Warn().Err(err).Str("plural_forms", d.PluralForms).Msg("Ignoring invalid Plural-Forms")

			break
		}

		m.plural = compiled
	}

	return m
}

// form is the msgstr index used for n.
func (m *messages) form(n int) int {
	if m.plural != nil {
		return m.plural.Eval(uint32(max(n, 0))) //nolint:gosec // clamped to non-negative
	}

	if n == 1 {
		return 0
	}

	return 1
}

// get is the translated msgstr at index, if the catalogue has one.
func (m *messages) get(msgid string, index int) (string, bool) {
	entry, ok := m.entries[msgid]
	if !ok {
		return "", false
	}

	text := entry.Trs[index]

	return text, text != ""
}

// Load reads dir/<locale>.po files of fsys. Locale names may use "_" or "-",
// e.g. pt_BR.po or pt-BR.po. Files that are not named after a language are
// skipped with a warning.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	c := &Catalog{locales: make(map[string]*messages)}

	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".po")
		if entry.IsDir() || !ok {
			continue
		}

		tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
		if err != nil {
			Logger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping catalogue with an invalid locale name")

			continue
		}

		po := gotext.NewPoFS(fsys)
		po.ParseFile(path.Join(dir, entry.Name()))

		c.locales[tag.String()] = newMessages(po.GetDomain())
		if tag != baseTag {
			c.tags = append(c.tags, tag)
		}

		Logger.Info().Str("locale", tag.String()).Msg("Loaded catalogue")
	}

	slices.SortFunc(c.tags, func(a, b language.Tag) int { return strings.Compare(a.String(), b.String()) })

	// The base tag goes first so the matcher falls back to it.
	c.tags = slices.Insert(c.tags, 0, baseTag)
	c.matcher = language.NewMatcher(c.tags)

	return c, nil
}

// Languages lists the supported tags sorted by their string form.
func (c *Catalog) Languages() []language.Tag {
	out := slices.Clone(c.tags)
	slices.SortFunc(out, func(a, b language.Tag) int { return strings.Compare(a.String(), b.String()) })

	return out
}

// Match picks the supported tag closest to the preferences, each a tag or an
// Accept-Language value, in decreasing priority. The result is one of
// Languages, without the extensions the matcher adds.
func (c *Catalog) Match(preferences ...string) language.Tag {
	_, i := language.MatchStrings(c.matcher, preferences...)

	return c.tags[i]
}

// translate looks up singular, or its plural form for n, in the locale closest
// to tag and fills in vars.
func (c *Catalog) translate(tag language.Tag, singular, plural string, n int, vars Vars) string {
	matched := c.Match(tag.String())

	text, ok := c.lookup(matched, singular, plural, n)
	if ok {
		return c.format(matched, text, vars)
	}

	text = singular
	if plural != "" && n != 1 {
		text = plural
	}

	text = c.format(matched, text, vars)

	if c.Strict {
		c.reportMissing(matched, singular)

		return "⟦" + text + "⟧"
	}

	return text
}

func (c *Catalog) lookup(tag language.Tag, singular, plural string, n int) (string, bool) {
	m := c.locales[tag.String()]
	if m == nil {
		return "", false
	}

	if plural == "" {
		return m.get(singular, 0)
	}

	return m.get(singular, m.form(n))
}

func (c *Catalog) reportMissing(tag language.Tag, msgid string) {
	if _, seen := c.missing.LoadOrStore(tag.String()+"\x00"+msgid, struct{}{}); !seen {
		Logger.Warn().
			Str("locale", tag.String()).
			Str("msgid", msgid).
			Msg("Missing translation")
	}
}

// format executes text as a text/template over vars. Text without actions is
// returned as is.
func (c *Catalog) format(tag language.Tag, text string, vars Vars) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	var tmpl *template.Template

	if cached, ok := c.templates.Load(text); ok {
		tmpl = cached.(*template.Template) //nolint:forcetypeassert // only templates are stored
	} else {
		parsed, err := template.New("msg").Option("missingkey=error").Parse(text)
		if err != nil {
			return c.formatFailed(tag, text, err)
		}

		c.templates.Store(text, parsed)
		tmpl = parsed
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(vars)); err != nil {
		return c.formatFailed(tag, text, err)
	}

	return buf.String()
}

func (c *Catalog) formatFailed(tag language.Tag, text string, err error) string {
	Logger.Warn().
		Err(err).
		Str("locale", tag.String()).
		Str("text", text).
		Msg("Failed to format translation")

	return text
}
