package core

import (
	"fmt"
	"regexp"
	"strconv"
)

// DuplicateName returns name suffixed with one more than the largest " (k)"
// suffix any sibling carries on exactly name. Suffixes accumulate: duplicating
// "A (1)" yields "A (1) (1)".
func DuplicateName(name string, siblings []string) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + ` \((\d+)\)$`)
	maxK := 0
	for _, sibling := range siblings {
		m := pattern.FindStringSubmatch(sibling)
		if m == nil {
			continue
		}
		k, err := strconv.Atoi(m[1])
		if err != nil || k <= 0 {
			continue
		}
		if k > maxK {
			maxK = k
		}
	}
	return fmt.Sprintf("%s (%d)", name, maxK+1)
}

// DefaultName disambiguates a schema default name on create. When n siblings
// already carry def or def with a numeric suffix the result is "def (n)".
func DefaultName(def string, siblings []string) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(def) + `( \([0-9]+\))?$`)
	n := 0
	for _, sibling := range siblings {
		if pattern.MatchString(sibling) {
			n++
		}
	}
	if n == 0 {
		return def
	}
	return fmt.Sprintf("%s (%d)", def, n)
}
