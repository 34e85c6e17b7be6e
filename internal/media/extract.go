// Package media finds image links in comment text and turns them into
// local, normalized thumbnails.
package media

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// candidateRe matches a whole http(s) URL up to whitespace or a bracket or
// quote that commonly wraps links in comment text.
var candidateRe = regexp.MustCompile(`https?://[^\s\[\]()<>"']+`)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ExtractImageURLs returns the http(s) URLs in text whose path ends in a
// raster image extension, in order of first appearance and without
// duplicates. Query strings are kept.
func ExtractImageURLs(text string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, m := range candidateRe.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:!?")
		if seen[m] || !isImageURL(m) {
			continue
		}
		seen[m] = true
		urls = append(urls, m)
	}
	return urls
}

func isImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return imageExts[strings.ToLower(path.Ext(u.Path))]
}
