package catalog

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed bundled/catalog.json
var bundledFiles embed.FS

// BundledPath is the location of the embedded catalog inside BundledFS.
const BundledPath = "bundled/catalog.json"

var (
	bundledOnce sync.Once
	bundled     Catalog
	bundledErr  error
)

// BundledFS exposes the embedded catalog so loaders can read it like any other
// fs.FS source.
func BundledFS() fs.FS {
	return bundledFiles
}

// Bundled decodes the embedded catalog once and returns it.
func Bundled() (Catalog, error) {
	bundledOnce.Do(func() {
		data, err := fs.ReadFile(bundledFiles, BundledPath)
		if err != nil {
			bundledErr = err
			return
		}
		bundled, bundledErr = Decode(data, BundledPath)
	})
	return bundled, bundledErr
}
