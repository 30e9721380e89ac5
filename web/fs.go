package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// StaticFS provides access to the dashboard assets (HTML, CSS, JS).
// In embedded mode, files are served from the embedded filesystem
// In development mode, this could be swapped for os.DirFS for live reloading
var StaticFS fs.FS

func init() {
	var err error
	StaticFS, err = fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create static filesystem: " + err.Error())
	}
}

// GetStaticFS returns the static filesystem
func GetStaticFS() fs.FS {
	return StaticFS
}

// SetStaticFS allows overriding the static filesystem (useful for development)
func SetStaticFS(fsys fs.FS) {
	StaticFS = fsys
}
