// Package main hosts the vidcheck CLI entrypoint and command graph.
//
// The Cobra command tree runs single checks from the terminal (text, URL or
// local video), serves the same pipeline over HTTP, inspects the verdict
// cache, reports missing external tools and scaffolds configuration. Heavy
// lifting lives in the internal packages; commands here resolve
// configuration, build the logger and render results.
package main
