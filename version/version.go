package version

import (
	"fmt"
	"io"
	"runtime"
)

// Set with -ldflags "-X github.com/dreamerjackson/ghcrawler/version.GitHash=..."
var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "None"
)

// GetVersion returns Version with the short commit appended.
func GetVersion() string {
	if GitHash == "" || GitHash == "None" {
		return Version
	}

	h := GitHash
	if len(h) > 7 {
		h = h[:7]
	}

	return fmt.Sprintf("%s-%s", Version, h)
}

// Printer print build version
func Printer(w io.Writer) {
	fmt.Fprintln(w, "Version:          ", GetVersion())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Commit:       ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
	fmt.Fprintln(w, "Go Version:       ", runtime.Version())
}
