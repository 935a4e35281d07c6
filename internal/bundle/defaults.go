package bundle

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.properties
var defaultBundles embed.FS

// Defaults returns the resource bundles shipped with the binary.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaultBundles, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}
