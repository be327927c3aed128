// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware chain of the tag page server.

Routes are registered on a net/http ServeMux by router.DefineRoutes. Handlers
return errors, which CatchError turns into the themed error page or the login
prompt.
*/
package middleware
