package httpserver

import (
	"embed"
	"io/fs"
)

//go:embed web/index.html
var indexHTML []byte

//go:embed web/static
var webFS embed.FS

// staticFiles is rooted at web/static so /static/script.js maps to script.js.
var staticFiles = mustSub(webFS, "web/static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
