// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// ServiceName identifies the dashboard in health checks and the gRPC service path
const ServiceName = "autosales.v1.Dashboard"
