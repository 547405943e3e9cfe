// Package appfs exposes the repo's embedded static assets:
// database migrations and email templates.
package appfs

import "embed"

//go:embed all:assets migrations
var FS embed.FS
