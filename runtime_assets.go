package formdispatch

import (
	"embed"
	"io/fs"
)

//go:embed pkg/runtime/assets/*.js
var embeddedRuntimeAssets embed.FS

// RuntimeScriptName is the browser runtime inside RuntimeAssetsFS.
const RuntimeScriptName = "formdispatch-runtime.js"

// RuntimeAssetsFS exposes the browser runtime that guards dispatch buttons and
// required checkbox groups.
//
// Typical mount:
//
//	mux.Handle("/runtime/",
//	  http.StripPrefix("/runtime/",
//	    http.FileServerFS(formdispatch.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedRuntimeAssets, "pkg/runtime/assets")
	if err != nil {
		return embeddedRuntimeAssets
	}
	return sub
}
