// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package tagpage

import (
	"codeberg.org/dailyfe/dailyfe/config"
	"codeberg.org/dailyfe/dailyfe/core"
)

// OpenGraph holds og: properties.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	SiteName    string
}

// Twitter holds twitter: card properties.
type Twitter struct {
	Card string
	Site string
}

// SEO is the head metadata of a page.
type SEO struct {
	Title       string
	Description string
	Canonical   string
	OpenGraph   OpenGraph
	Twitter     Twitter
}

// Site holds the instance-wide SEO defaults.
type Site struct {
	Name        string
	Description string
	Image       string
	Twitter     string
}

// SiteFromConfig reads the SEO defaults from config.Global.
func SiteFromConfig() Site {
	return Site{
		Name:        config.Global.Site.Name,
		Description: config.Global.Site.Description,
		Image:       config.Global.Site.Image,
		Twitter:     config.Global.Site.Twitter,
	}
}

// DefaultSEO is the metadata of pages without their own.
func (s Site) DefaultSEO() SEO {
	return SEO{
		Title:       s.Name,
		Description: s.Description,
		OpenGraph: OpenGraph{
			Title:       s.Name,
			Description: s.Description,
			Image:       s.Image,
			Type:        "website",
			SiteName:    s.Name,
		},
		Twitter: Twitter{
			Card: "summary_large_image",
			Site: s.Twitter,
		},
	}
}

// TagTitle is the fallback title of a tag page.
func (s Site) TagTitle(tag string) string {
	return tag + " posts on " + s.Name
}

// seoFor builds the metadata of the tag page from its generated props.
//
// The keyword title replaces the whole fallback title. The open graph title
// and description follow the page's own.
func seoFor(site Site, props core.TagPageProps) SEO {
	seo := site.DefaultSEO()

	seo.Title = site.TagTitle(props.Tag)

	if kw := props.InitialData; kw != nil {
		if kw.Flags.Title != "" {
			seo.Title = kw.Flags.Title
		}

		if kw.Flags.Description != "" {
			seo.Description = kw.Flags.Description
		}
	}

	seo.OpenGraph.Title = seo.Title
	seo.OpenGraph.Description = seo.Description

	return seo
}
