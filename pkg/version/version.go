// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package version holds the build identity of the hearth binary.
package version

import "fmt"

// Default build-time values, overridden by the linker.
var (
	// Version is the semantic version of the hub core.
	Version = "0.9.0"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
	// BuildDate is the RFC3339 timestamp of the build.
	BuildDate = "unknown"
)

// Full returns a printable one-line version string.
func Full() string {
	return fmt.Sprintf("hearth %s - Commit: %s - Built: %s", Version, Commit, BuildDate)
}
