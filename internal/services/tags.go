package services

import "strings"

// NormalizeTags turns the comma-separated tags input into an ordered slice,
// stripping all whitespace first. Empty input yields an empty slice, never nil.
func NormalizeTags(tagsText string) []string {
	stripped := strings.ReplaceAll(tagsText, " ", "")
	if stripped == "" {
		return []string{}
	}
	return strings.Split(stripped, ",")
}
