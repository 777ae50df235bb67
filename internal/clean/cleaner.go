// Package clean normalizes raw article text before persistence.
package clean

import (
	"regexp"
	"strings"
)

var (
	citationPattern   = regexp.MustCompile(`\[\d+\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Cleaner strips trailing reference sections and normalizes whitespace.
// Clean is a pure function of the input text and the configured section list.
type Cleaner struct {
	dropSections []string
}

// New creates a Cleaner that truncates articles at the first occurrence of any
// of the given section headings.
func New(dropSections []string) *Cleaner {
	return &Cleaner{
		dropSections: dropSections,
	}
}

// Clean truncates at the first configured section heading, strips citation
// markers like [3], and collapses runs of whitespace into single spaces.
func (c *Cleaner) Clean(text string) string {
	for _, section := range c.dropSections {
		if idx := strings.Index(text, section); idx >= 0 {
			text = text[:idx]
		}
	}
	text = citationPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
