// Package web embeds the dashboard UI served by the API server.
//
// The web/out/ directory holds a static single-page app (index.html,
// app.js, style.css) that talks to the /api/v1 endpoints. It is embedded
// at compile-time using go:embed.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/treasuryrisk/web"
//	fs := web.DistFS()  // returns io/fs.FS rooted at out/
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"
)

//go:embed all:out
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded out/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "out")
	if err != nil {
		slog.Error("web.DistFS", "error", err)
		os.Exit(1)
	}
	return sub
}
