package rota

import (
	"sort"
	"strings"
)

// City groups posts. A LOCAL holiday bound to a city entitles exactly the
// city's posts; changing the posts rebinds every such holiday.
type City struct {
	Name  string
	Posts []string
}

// NormalizeName trims and upper-cases a roster name, post or city.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizePosts returns the distinct non-empty posts, normalized and sorted.
func NormalizePosts(posts []string) []string {
	seen := make(map[string]bool, len(posts))
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		p = NormalizeName(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// PostOwners maps each post to the city that holds it.
func PostOwners(cities []City) map[string]string {
	owners := make(map[string]string)
	for _, c := range cities {
		for _, p := range c.Posts {
			owners[p] = c.Name
		}
	}
	return owners
}
