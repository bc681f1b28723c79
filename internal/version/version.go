// Package version exposes the build version, overridable with
// -ldflags "-X github.com/sidesales/sidesales-backend/internal/version.Version=...".
package version

// Version is the application version.
var Version = "dev"
