// Package classify tags paths for interactive display. Tags never
// influence which records are exported or any exported field value.
package classify

import "strings"

// Tag is the display classification of one path.
type Tag int

const (
	// TagNormal marks a path with no match.
	TagNormal Tag = iota
	// TagKeyword marks a path containing an operator keyword.
	TagKeyword
	// TagExecutable marks a file reference that is the artifact's
	// tracked executable. Takes precedence over TagKeyword.
	TagExecutable
)

// Classifier evaluates paths against an operator keyword set. Matching
// is case-insensitive.
type Classifier struct {
	keywords []string
}

// New builds a Classifier. Keywords are lowered once up front; empty
// entries are dropped.
func New(keywords []string) *Classifier {
	c := &Classifier{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			c.keywords = append(c.keywords, k)
		}
	}
	return c
}

// Text tags free text (a directory path, a device name): TagKeyword if
// any keyword is a substring, else TagNormal.
func (c *Classifier) Text(s string) Tag {
	low := strings.ToLower(s)
	for _, k := range c.keywords {
		if strings.Contains(low, k) {
			return TagKeyword
		}
	}
	return TagNormal
}

// FileRef tags a file reference entry against the artifact's tracked
// executable. An entry whose path ends with the executable name is
// TagExecutable regardless of keywords.
func (c *Classifier) FileRef(path, executable string) Tag {
	exe := strings.ToLower(executable)
	if exe != "" && strings.HasSuffix(strings.ToLower(path), exe) {
		return TagExecutable
	}
	return c.Text(path)
}
