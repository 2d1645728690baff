// Package embed runs the bundled Python runtime inside the launcher process.
// The runtime's shared library is loaded at startup with purego, so the
// launcher itself builds without cgo.
//
// Importing this package registers the "embed" backend with the launcher.
package embed
