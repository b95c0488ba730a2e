package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var windowsEnvVar = regexp.MustCompile(`%([^%]+)%`)

// expandPath expands $VAR (and %VAR% on Windows) and a leading ~ in p.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		expanded = windowsEnvVar.ReplaceAllStringFunc(expanded, func(m string) string {
			if v, ok := os.LookupEnv(m[1 : len(m)-1]); ok {
				return v
			}
			return m
		})
	}

	rest, ok := cutHome(expanded)
	if !ok {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	return filepath.Join(home, rest)
}

// cutHome strips a leading "~", "~/" or (on Windows) "~\".
func cutHome(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if strings.HasPrefix(p, "~/") || (runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`)) {
		return p[2:], true
	}
	return "", false
}
