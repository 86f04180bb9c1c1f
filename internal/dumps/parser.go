package dumps

import "regexp"

// ExtractLinks returns the first capture group of every match of pattern in
// body, in document order and without deduplication. No matches means nil,
// never an error; the dump server's index pages are plain enough that
// targeted extraction beats a full HTML parse.
func ExtractLinks(body string, pattern *regexp.Regexp) []string {
	matches := pattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
