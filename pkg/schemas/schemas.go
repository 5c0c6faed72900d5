// Package schemas bundles the STIX 2.1 JSON Schema subset the validator
// ships with. Object schemas live under sdos/ and sros/; common/ holds the
// bundle schema and the shared definitions they reference.
package schemas

import (
	"embed"
	"io/fs"
)

//go:embed stix2.1
var files embed.FS

// FS returns the embedded schema tree, rooted at the version directory so
// schema paths look like "common/core.json".
func FS() fs.FS {
	sub, err := fs.Sub(files, "stix2.1")
	if err != nil {
		// The embedded tree is fixed at build time.
		panic(err)
	}
	return sub
}
