// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/xml"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"codeberg.org/dailyfe/dailyfe/assets/components/partials"
	"codeberg.org/dailyfe/dailyfe/core"
	"codeberg.org/dailyfe/dailyfe/core/requests"
	"codeberg.org/dailyfe/dailyfe/core/tagpage"
	"codeberg.org/dailyfe/dailyfe/server/request_context"
	"codeberg.org/dailyfe/dailyfe/server/utils"
)

// atomContentTemplate is a pre-parsed template for the HTML content of an Atom entry.
var atomContentTemplate = template.Must(template.New("atomContent").Parse(
	`<div xmlns="http://www.w3.org/1999/xhtml">` +
		`{{if .Image}}<div><img src="{{.Image}}" alt=""/></div>{{end}}` +
		`<p>{{.Source}}</p>` +
		`</div>`,
))

// atomLink represents a link in an Atom feed.
type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr,omitempty"`
	Href string `xml:"href,attr"`
}

// atomAuthor represents an author in an Atom feed.
type atomAuthor struct {
	Name string `xml:"name"`
}

// atomCategory is a tag of an entry.
type atomCategory struct {
	Term string `xml:"term,attr"`
}

// atomContent represents the content of an Atom entry.
type atomContent struct {
	Type    string `xml:"type,attr"`
	Content string `xml:",innerxml"`
}

// atomEntry represents an entry in an Atom feed.
type atomEntry struct {
	XMLName    xml.Name       `xml:"entry"`
	ID         string         `xml:"id"`
	Link       atomLink       `xml:"link"`
	Updated    string         `xml:"updated"`
	Title      string         `xml:"title"`
	Author     atomAuthor     `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Content    atomContent    `xml:"content"`
}

// atomFeed is the root element of an Atom feed.
type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	ID      string      `xml:"id"`
	Links   []atomLink  `xml:"link"`
	Updated string      `xml:"updated"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

// TagAtomFeed serves the first page of the tag feed as Atom.
func TagAtomFeed(w http.ResponseWriter, r *http.Request) error {
	tag := utils.GetPathVar(r, "tag")
	caller := core.CallerFromRequest(r)

	page, err := core.GetTagFeed(r.Context(), requests.Default, caller, core.NewTagQueryVariables(tag), "")
	if err != nil {
		return err
	}

	feed, err := buildTagAtomFeed(request_context.FromRequest(r).CommonData.BaseURL, tag, page, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build tag atom feed: %w", err)
	}

	setPageCacheControl(w, caller)
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")

	_, _ = w.Write([]byte(xml.Header))

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")

	return encoder.Encode(feed)
}

// buildTagAtomFeed converts a feed page. The feed is as recent as its newest post,
// or now when it has none.
func buildTagAtomFeed(baseURL, tag string, page core.FeedPage, now time.Time) (*atomFeed, error) {
	pageURL := baseURL + partials.TagPath(tag)

	feed := &atomFeed{
		ID:    pageURL,
		Title: tagpage.SiteFromConfig().TagTitle(tag),
		Links: []atomLink{
			{Rel: "self", Type: "application/atom+xml", Href: pageURL + "/atom.xml"},
			{Rel: "alternate", Type: "text/html", Href: pageURL},
		},
	}

	updated := time.Time{}

	for _, post := range page.Posts {
		entry, err := buildAtomEntry(post)
		if err != nil {
			return nil, err
		}

		if post.CreatedAt.After(updated) {
			updated = post.CreatedAt
		}

		feed.Entries = append(feed.Entries, entry)
	}

	if updated.IsZero() {
		updated = now
	}

	feed.Updated = updated.UTC().Format(time.RFC3339)

	return feed, nil
}

func buildAtomEntry(post core.Post) (atomEntry, error) {
	var content strings.Builder
	data := struct {
		Image  string
		Source string
	}{
		Image:  post.Image,
		Source: post.Source.Name,
	}

	if err := atomContentTemplate.Execute(&content, data); err != nil {
		return atomEntry{}, fmt.Errorf("post %s: %w", post.ID, err)
	}

	categories := make([]atomCategory, 0, len(post.Tags))
	for _, t := range post.Tags {
		categories = append(categories, atomCategory{Term: t})
	}

	return atomEntry{
		ID:         post.Permalink,
		Link:       atomLink{Rel: "alternate", Href: post.Permalink},
		Updated:    post.CreatedAt.UTC().Format(time.RFC3339),
		Title:      post.Title,
		Author:     atomAuthor{Name: post.Source.Name},
		Categories: categories,
		Content:    atomContent{Type: "xhtml", Content: content.String()},
	}, nil
}
