package report

import (
	"fmt"
	"strconv"
	"strings"
)

// EngineVersion is the running engine version. A -suffix marks a
// prerelease and is ignored by signature version gates.
const EngineVersion = "1.3.0"

// ValidateVersion reports whether s is a usable engine version string.
func ValidateVersion(s string) error {
	_, err := parseVersion(s)
	return err
}

// version is a strict dotted-numeric triple. The patch component is
// optional in the string form and defaults to zero.
type version struct {
	major, minor, patch int
}

// parseVersion parses "major.minor" or "major.minor.patch" with
// all-numeric components, discarding any suffix after a literal "-".
func parseVersion(s string) (version, error) {
	base, _, _ := strings.Cut(strings.TrimSpace(s), "-")

	parts := strings.Split(base, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return version{}, fmt.Errorf("malformed version %q", s)
	}

	numbers := make([]int, 3)
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return version{}, fmt.Errorf("malformed version %q: %w", s, err)
		}
		numbers[i] = n
	}

	return version{major: numbers[0], minor: numbers[1], patch: numbers[2]}, nil
}

func parseComponent(part string) (int, error) {
	if part == "" {
		return 0, fmt.Errorf("empty component")
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric component %q", part)
		}
	}
	return strconv.Atoi(part)
}

// compare returns -1, 0, or 1 as v sorts before, equal to, or after o.
func (v version) compare(o version) int {
	pairs := [3][2]int{
		{v.major, o.major},
		{v.minor, o.minor},
		{v.patch, o.patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}
