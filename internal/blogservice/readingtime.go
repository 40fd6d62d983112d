package blogservice

import "strings"

const wordsPerMinute = 200

// ReadingTime estimates how many minutes it takes to read body. Words are
// runs of non-whitespace; the result is ceil(words/200). A blank body
// estimates to zero.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	if words == 0 {
		return 0
	}

	return (words + wordsPerMinute - 1) / wordsPerMinute
}
