package github

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// linkRegex matches Link header entries: <url>; rel="type".
var linkRegex = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// ParseAllLinks extracts all URLs from a Link header by relationship type.
// Returns a map of rel type to URL.
func ParseAllLinks(linkHeader string) map[string]string {
	links := make(map[string]string)
	if linkHeader == "" {
		return links
	}

	parts := strings.Split(linkHeader, ",")
	for _, part := range parts {
		matches := linkRegex.FindStringSubmatch(strings.TrimSpace(part))
		if len(matches) == 3 {
			links[matches[2]] = matches[1]
		}
	}

	return links
}

// GetLastPage extracts the "last" URL from a Link header.
func GetLastPage(linkHeader string) string {
	links := ParseAllLinks(linkHeader)
	return links["last"]
}

// LastPageNumber returns the page query parameter of the "last" link, or 0.
func LastPageNumber(linkHeader string) int {
	last := GetLastPage(linkHeader)
	if last == "" {
		return 0
	}
	u, err := url.Parse(last)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return 0
	}
	return n
}
