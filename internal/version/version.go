// Package version carries the build fingerprints stamped into the binary.
package version

import (
	"strings"

	"github.com/fatih/color"
)

// Stamped at build time via -ldflags, e.g.
//
//	-X surgehost/internal/version.Number=0.2.0
var (
	// Number is the semantic version of surgehost.
	Number = "0.1.0-dev"
	// GitCommit is the commit hash the binary was built from, when stamped.
	GitCommit = ""
	// BuildDate is an ISO-8601 build timestamp, when stamped.
	BuildDate = ""
)

var segmentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Banner renders Number with each dotted segment in its own color for
// terminal output. The patch segment and any suffix share the last color.
func Banner() string {
	if Number == "" {
		return "dev"
	}
	parts := strings.SplitN(Number, ".", 3)
	for i := range parts {
		parts[i] = segmentColors[i].Sprint(parts[i])
	}
	return strings.Join(parts, ".")
}
