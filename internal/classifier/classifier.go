package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker matches a lower-cased title.
type Marker interface {
	Match(title string) bool
}

// Literal matches when the title contains Text.
type Literal struct {
	Text string
}

func (l Literal) Match(title string) bool {
	return strings.Contains(title, l.Text)
}

// Pattern matches when the regular expression finds a match anywhere in the title.
type Pattern struct {
	Re *regexp.Regexp
}

func (p Pattern) Match(title string) bool {
	return p.Re.MatchString(title)
}

// Classifier flags titles that should be hidden from default listings.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	markers []Marker
}

func New(markers ...Marker) *Classifier {
	return &Classifier{markers: markers}
}

// Parse builds a classifier from configuration entries. An entry wrapped in
// slashes ("/\bxxx/") is a regular expression, anything else a literal.
// Literals are lower-cased to match the case-folded title and patterns are
// compiled case-insensitively.
func Parse(entries []string) (*Classifier, error) {
	markers := make([]Marker, 0, len(entries))
	for _, entry := range entries {
		if len(entry) > 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
			re, err := regexp.Compile("(?i)" + entry[1:len(entry)-1])
			if err != nil {
				return nil, fmt.Errorf("compile marker %q: %w", entry, err)
			}
			markers = append(markers, Pattern{Re: re})
			continue
		}
		markers = append(markers, Literal{Text: strings.ToLower(entry)})
	}
	return New(markers...), nil
}

func (c *Classifier) IsSensitive(title string) bool {
	if title == "" {
		return false
	}
	title = strings.ToLower(title)
	for _, m := range c.markers {
		if m.Match(title) {
			return true
		}
	}
	return false
}

func (c *Classifier) Len() int {
	return len(c.markers)
}
