// Package codicon finds theme icon references such as $(check) or $(sync~spin) in text
// and turns them into inline icon elements.
package codicon

import (
	"fmt"
	"html"
	"iter"
	"regexp"
	"strings"
)

const (
	// ErrorIconID is used when a reference cannot be resolved to an icon.
	ErrorIconID = "error"

	// ElementName is the inline tag emitted for a rendered icon.
	ElementName = "code-icon"
)

var (
	escapedIconPattern = regexp.MustCompile(`\\\$\([A-Za-z0-9-]+(?:~[A-Za-z]+)?\)`)
	iconPattern        = regexp.MustCompile(`(\\)?\$\(([A-Za-z0-9-]+(?:~[A-Za-z]+)?)\)`)
	iconRefPattern     = regexp.MustCompile(`^([A-Za-z0-9-]+)(?:~([A-Za-z]+))?$`)
)

// Icon is a parsed icon reference.
type Icon struct {
	ID       string `json:"id"`
	Modifier string `json:"modifier,omitempty"`
}

// String returns the reference body, e.g. "sync~spin".
func (i Icon) String() string {
	if i.Modifier == "" {
		return i.ID
	}
	return i.ID + "~" + i.Modifier
}

// Segment is one piece of a scanned text. Plain text has a nil Icon.
// Escaped tokens carry their literal text and are not rendered.
type Segment struct {
	Text    string
	Icon    *Icon
	Escaped bool
}

// ParseIcon validates a reference body ("name" or "name~modifier").
func ParseIcon(ref string) (Icon, bool) {
	m := iconRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return Icon{}, false
	}
	return Icon{ID: m[1], Modifier: m[2]}, true
}

// PreEscape adds a backslash in front of every backslash-escaped icon token so the escape
// survives a markdown parser stripping one level of escaping.
func PreEscape(text string) string {
	if text == "" {
		return text
	}
	return escapedIconPattern.ReplaceAllStringFunc(text, func(m string) string {
		return `\` + m
	})
}

// Segments scans text left to right and yields plain text and icon tokens in order.
func Segments(text string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		cursor := 0
		for _, loc := range iconPattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			if start > cursor {
				if !yield(Segment{Text: text[cursor:start]}) {
					return
				}
			}
			cursor = end

			ref := text[loc[4]:loc[5]]
			escaped := loc[2] >= 0

			var seg Segment
			if escaped {
				seg = Segment{Text: "$(" + ref + ")", Escaped: true}
			} else {
				icon := ResolveIcon(ref)
				seg = Segment{Text: text[start:end], Icon: &icon}
			}
			if !yield(seg) {
				return
			}
		}
		if cursor < len(text) {
			yield(Segment{Text: text[cursor:]})
		}
	}
}

// RenderIconsInText replaces live icon tokens with inline icon elements and unwraps escaped
// tokens into their literal text. Everything else is copied unchanged.
func RenderIconsInText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for seg := range Segments(text) {
		if seg.Icon != nil {
			b.WriteString(RenderIcon(*seg.Icon))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// ResolveIcon parses ref, falling back to the error icon when it is not a valid reference.
func ResolveIcon(ref string) Icon {
	icon, ok := ParseIcon(ref)
	if !ok {
		return Icon{ID: ErrorIconID}
	}
	return icon
}

// Element resolves a reference body to its inline element.
func Element(ref string) string {
	return RenderIcon(ResolveIcon(ref))
}

// RenderIcon returns the inline element for icon.
func RenderIcon(icon Icon) string {
	if icon.Modifier == "" {
		return fmt.Sprintf(`<%s icon="%s"></%s>`, ElementName, html.EscapeString(icon.ID), ElementName)
	}
	return fmt.Sprintf(`<%s icon="%s" modifier="%s"></%s>`,
		ElementName, html.EscapeString(icon.ID), html.EscapeString(icon.Modifier), ElementName)
}
