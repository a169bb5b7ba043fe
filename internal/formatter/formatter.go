package formatter

import (
	"fmt"
	"strings"
)

// DefaultIndent is the indentation of one record nesting level.
const DefaultIndent = "    "

// Formatter reflows declaration text so that every record field sits on its
// own line.
type Formatter struct {
	indent string
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{indent: DefaultIndent}
}

// NewFormatterWithIndent creates a Formatter with a custom indentation unit.
func NewFormatterWithIndent(indent string) *Formatter {
	return &Formatter{indent: indent}
}

// Format takes single-line declarations and returns them in multi-line form.
// Declarations separated by a blank line stay separated.
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	var lines []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text != "" {
			lines = append(lines, strings.Repeat(f.indent, depth)+text)
		}
	}

	rs := []rune(code)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		var next rune
		if i+1 < len(rs) {
			next = rs[i+1]
		}

		switch {
		case r == '\\' && next != 0:
			// escaped identifier character
			cur.WriteRune(r)
			cur.WriteRune(next)
			i++
		case r == '{' && next == '|' && strings.HasPrefix(string(rs[i+2:]), "|}"):
			cur.WriteString("{||}")
			i += 3
		case r == '{':
			cur.WriteRune(r)
			if next == '|' {
				cur.WriteRune(next)
				i++
			}
			flush()
			depth++
		case r == '}' || (r == '|' && next == '}'):
			flush()
			if depth == 0 {
				return "", fmt.Errorf("failed to format declarations: unbalanced '}' at offset %d", i)
			}
			depth--
			if r == '|' {
				cur.WriteString("|}")
				i++
			} else {
				cur.WriteRune(r)
			}
		case r == ';':
			cur.WriteRune(r)
			if depth > 0 {
				flush()
			}
		case r == '\n' && depth == 0:
			flush()
			if next == '\n' {
				lines = append(lines, "")
				for i+1 < len(rs) && rs[i+1] == '\n' {
					i++
				}
			}
		case r == '\n':
			cur.WriteRune(' ')
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	if depth != 0 {
		return "", fmt.Errorf("failed to format declarations: %d unclosed record(s)", depth)
	}
	return strings.Join(lines, "\n") + "\n", nil
}
