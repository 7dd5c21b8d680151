package builder

import (
	"regexp"
	"strings"
	"unicode"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// dedent removes the common indentation of the template's continuation
// lines. The first line of each segment continues the preceding
// interpolation and never counts. A blank last line of a segment that is
// followed by another interpolation counts with its full width, since the
// interpolation is what gives the line content.
func dedent(segments []string) []string {
	indentation := -1
	split := make([][]string, len(segments))
	for si, segment := range segments {
		lines := lineBreak.Split(segment, -1)
		split[si] = lines
		for li, line := range lines {
			if li == 0 {
				continue
			}
			position := strings.IndexFunc(line, func(r rune) bool { return r != ' ' })
			if position < 0 {
				if li == len(lines)-1 && si < len(segments)-1 {
					position = len(line)
				} else {
					continue
				}
			}
			if indentation < 0 || position < indentation {
				indentation = position
			}
		}
	}

	if indentation < 0 {
		return segments
	}

	out := make([]string, len(segments))
	for si, lines := range split {
		for li := range lines {
			if li == 0 {
				continue
			}
			if len(lines[li]) >= indentation {
				lines[li] = lines[li][indentation:]
			} else {
				lines[li] = ""
			}
		}
		out[si] = strings.Join(lines, "\n")
	}
	return out
}

func trimStart(text string) string {
	return strings.TrimLeftFunc(text, unicode.IsSpace)
}

func trimEnd(text string) string {
	return strings.TrimRightFunc(text, unicode.IsSpace)
}
