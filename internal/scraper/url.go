package scraper

import (
	"fmt"
	"strconv"
	"strings"
)

// PageURL builds the listing URL for a category and page number.
func (c Config) PageURL(category string, page int) string {
	return expandTemplate(c.PageURLTemplate, map[string]string{
		"category": category,
		"page":     strconv.Itoa(page),
	})
}

// PostingURL builds the canonical detail URL for a discovered link.
func (c Config) PostingURL(link string) string {
	return expandTemplate(c.PostingURLTemplate, map[string]string{
		"posting_link": link,
	})
}

// expandTemplate substitutes {name} placeholders, percent-encoding each value
// first so categories with spaces or unicode survive the round trip.
func expandTemplate(tmpl string, vars map[string]string) string {
	out := tmpl
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", escapeTemplateValue(value))
	}
	return out
}

// escapeTemplateValue percent-encodes a templated segment while leaving
// characters that are already URL-safe, including :/?=&, untouched. Discovered
// links are often path+query fragments; escaping their delimiters would
// corrupt them.
func escapeTemplateValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if urlSafeByte(ch) {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", ch)
	}
	return b.String()
}

func urlSafeByte(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	switch b {
	case '-', '_', '.', '~', ':', '/', '?', '=', '&', '%', '+', '#':
		return true
	}
	return false
}
