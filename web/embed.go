package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var webFS embed.FS

// GetWebFS returns the embedded web UI filesystem
func GetWebFS() fs.FS {
	ui, _ := fs.Sub(webFS, "dist")
	return ui
}
