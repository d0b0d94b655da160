package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath expands $VAR references and a leading ~ in p, then anchors a
// relative result at root. An empty p stays empty so "disabled" settings
// such as log_dir = "" survive.
func resolvePath(p, root string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	if root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}
