// Package version holds the application version, stamped into backup
// metadata and the health endpoint.
package version

// Version is the application version.
var Version = "0.1.0"
