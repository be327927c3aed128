// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package tagpage holds the per-request state and actions of a tag page.
package tagpage

import (
	"context"

	"codeberg.org/dailyfe/dailyfe/core"
	"codeberg.org/dailyfe/dailyfe/core/session"
	"codeberg.org/dailyfe/dailyfe/i18n"
)

// State is what the tag header shows for the current viewer.
type State struct {
	Status core.TagStatus

	FollowLabel i18n.MsgKey
	BlockLabel  i18n.MsgKey

	// ShowFollow is false once the tag is blocked.
	ShowFollow bool
	// ShowBlock is false once the tag is followed.
	ShowBlock bool
}

// Controller drives one tag page for one viewer.
type Controller struct {
	Tag string
	// Vars are the feed variables, fixed for the lifetime of the controller.
	Vars core.QueryVariables

	Caller  core.Caller
	Actions core.TagActions
	Site    Site

	// ShowLogin is called instead of a mutation when the viewer is signed out.
	ShowLogin func(trigger session.Trigger)
}

// New returns a Controller for tag.
func New(tag string, caller core.Caller, actions core.TagActions, showLogin func(session.Trigger)) *Controller {
	return &Controller{
		Tag:       tag,
		Vars:      core.NewTagQueryVariables(tag),
		Caller:    caller,
		Actions:   actions,
		Site:      SiteFromConfig(),
		ShowLogin: showLogin,
	}
}

// State derives the header state from the viewer's live settings.
func (c *Controller) State(settings *core.FeedSettings) State {
	status := core.ResolveTagStatus(settings, c.Tag)

	state := State{
		Status:      status,
		FollowLabel: "Follow",
		BlockLabel:  "Block",
		ShowFollow:  status != core.TagBlocked,
		ShowBlock:   status != core.TagFollowed,
	}

	if status == core.TagFollowed {
		state.FollowLabel = "Unfollow"
	}

	if status == core.TagBlocked {
		state.BlockLabel = "Unblock"
	}

	return state
}

// SEO returns the head metadata for the generated props.
func (c *Controller) SEO(props core.TagPageProps) SEO {
	return seoFor(c.Site, props)
}

// FeedKey is the query key of the feed shown on the page.
func (c *Controller) FeedKey() []string {
	return core.FeedQueryKey(c.Caller, c.Vars)
}

// OnFollowClick follows the tag, or unfollows it when status is followed.
//
// Signed-out viewers get the login prompt and no mutation is made.
// A rejected mutation is returned unchanged.
func (c *Controller) OnFollowClick(ctx context.Context, status core.TagStatus) error {
	if !c.signedIn() {
		return nil
	}

	payload := core.TagsPayload{Tags: []string{c.Tag}}

	if status == core.TagFollowed {
		return c.Actions.UnfollowTags(ctx, payload)
	}

	return c.Actions.FollowTags(ctx, payload)
}

// OnBlockClick blocks the tag, or unblocks it when status is blocked.
//
// Signed-out viewers get the login prompt and no mutation is made.
// A rejected mutation is returned unchanged.
func (c *Controller) OnBlockClick(ctx context.Context, status core.TagStatus) error {
	if !c.signedIn() {
		return nil
	}

	payload := core.TagsPayload{Tags: []string{c.Tag}}

	if status == core.TagBlocked {
		return c.Actions.UnblockTags(ctx, payload)
	}

	return c.Actions.BlockTags(ctx, payload)
}

// signedIn shows the login prompt for signed-out viewers.
func (c *Controller) signedIn() bool {
	if c.Caller.SignedIn() {
		return true
	}

	if c.ShowLogin != nil {
		c.ShowLogin(session.TriggerFilter)
	}

	return false
}
