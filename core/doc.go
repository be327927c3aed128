// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package core makes requests to the daily.dev GraphQL API and parses the answers
into structured data.

You may use this package independently as follows:

	package main

	import (
		"context"
		"fmt"

		"codeberg.org/dailyfe/dailyfe/core"
		"codeberg.org/dailyfe/dailyfe/core/requests"
	)

	func main() {
		props := core.GetTagStaticProps(context.Background(), core.KeywordFetcherFor(requests.Default), "golang")
		fmt.Println(props.Props.InitialData)
	}

This package's API is ever changing, so please pin a specific version of this package if you want to use it in your program.
*/
package core
