// Package kindling exposes the module version.
package kindling

// Version is the kindling release version.
const Version = "0.1.0"
