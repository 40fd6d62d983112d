package blogservice

import "regexp"

var scriptTagPattern = regexp.MustCompile(`(?is)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeBody strips script tags from a blog body before it is stored.
func sanitizeBody(body string) string {
	return scriptTagPattern.ReplaceAllString(body, "")
}
