// Package pattern parses wildcard domain patterns and encodes them
// into DNS wire-format match steps.
//
// A pattern is one dot-separated domain expression such as
// "example.com", "*.www.fint.me" or "fin?.me". A part that is exactly
// "*" matches one whole label of any content; "?" inside a literal
// part matches exactly one character. A "*" embedded in a longer part
// ("xxx*.example.com") is a literal asterisk.
package pattern

import (
	"fmt"
	"strings"
)

// MaxLabelLength is the DNS limit on the wire length of a single label.
const MaxLabelLength = 63

// LabelKind distinguishes literal labels from single-label wildcards.
type LabelKind uint8

const (
	// LabelLiteral is a label matched byte-for-byte (with optional
	// per-character '?' wildcards).
	LabelLiteral LabelKind = iota

	// LabelWildcard matches exactly one label of any length and content.
	LabelWildcard
)

// Label is one dot-separated component of a pattern. Text is empty for
// wildcard labels and for the terminating root label.
type Label struct {
	Kind LabelKind
	Text string
}

// Pattern is one parsed domain expression. Labels are in left-to-right
// order and always end with the empty root label.
type Pattern struct {
	Source string
	Labels []Label
}

// Parse tokenizes a raw domain string into a Pattern.
//
// Surrounding whitespace is trimmed first, then leading and trailing
// dots, so ".example.com." and "example.com" parse identically. The
// terminating root label is appended unconditionally. Empty interior
// labels ("a..b") are not rejected; they become empty literal labels
// that encode to a bare zero length byte.
func Parse(raw string) Pattern {
	name := strings.Trim(strings.TrimSpace(raw), ".")

	// Keep the trailing dot so the split yields the root label.
	parts := strings.Split(name+".", ".")

	labels := make([]Label, 0, len(parts))
	for _, part := range parts {
		if part == "*" {
			labels = append(labels, Label{Kind: LabelWildcard})
			continue
		}
		labels = append(labels, Label{Kind: LabelLiteral, Text: part})
	}

	return Pattern{Source: raw, Labels: labels}
}

// Validate checks that every literal label fits the DNS wire format.
func (p Pattern) Validate() error {
	for _, l := range p.Labels {
		if l.Kind == LabelLiteral && len(l.Text) > MaxLabelLength {
			return fmt.Errorf("pattern %q: label %q exceeds %d bytes", p.Source, l.Text, MaxLabelLength)
		}
	}
	return nil
}

// WireLength returns the encoded length of the pattern's literal
// labels in bytes: one length byte plus the text for each. Wildcard
// labels contribute nothing; the size of the label they match is only
// known at run time.
func (p Pattern) WireLength() int {
	n := 0
	for _, l := range p.Labels {
		if l.Kind == LabelLiteral {
			n += 1 + len(l.Text)
		}
	}
	return n
}
