package appointment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidTag = errors.New("tags must be alphanumeric")

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ParseTags splits a comma or space separated answer into tags.
// A blank answer means no tags.
func ParseTags(raw string) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return normalizeTags(fields)
}

// normalizeTags validates tags and drops duplicates, keeping first-seen order.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if !tagPattern.MatchString(tag) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out, nil
}
