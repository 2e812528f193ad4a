package highlight

import (
	"regexp"
	"unicode/utf8"
)

var (
	headerPattern = regexp.MustCompile(`(?m)^#{1,6}[ \t][^\r\n]*`)
	codePattern   = regexp.MustCompile("`[^`]+`")
	linkPattern   = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
)

// Markdown returns the syntax spans of text in pattern order: headers,
// bold, italic, code, links.
func Markdown(text string) []Span {
	idx := byteToRune(text)
	runes := []rune(text)

	var spans []Span
	spans = appendRegexp(spans, KindHeader, headerPattern, text, idx)
	spans = appendDelimited(spans, KindBold, runes, 2)
	spans = appendDelimited(spans, KindItalic, runes, 1)
	spans = appendRegexp(spans, KindCode, codePattern, text, idx)
	spans = appendRegexp(spans, KindLink, linkPattern, text, idx)
	return spans
}

func appendRegexp(spans []Span, kind Kind, re *regexp.Regexp, text string, idx []int) []Span {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		spans = append(spans, Span{Kind: kind, Start: idx[loc[0]], End: idx[loc[1]]})
	}
	return spans
}

// appendDelimited finds runs of n asterisks enclosing at least one rune on
// the same line, where neither delimiter touches a further asterisk on its
// outer side. It picks the leftmost opening delimiter and the nearest
// closing one, then continues after the closing delimiter.
func appendDelimited(spans []Span, kind Kind, runes []rune, n int) []Span {
	for s := 0; s+2*n+1 <= len(runes); {
		if !isDelim(runes, s, n) || (s > 0 && runes[s-1] == '*') {
			s++
			continue
		}
		end := -1
		for e := s + n + 1; e+n <= len(runes); e++ {
			if runes[e-1] == '\n' {
				break
			}
			if isDelim(runes, e, n) && (e+n == len(runes) || runes[e+n] != '*') {
				end = e + n
				break
			}
		}
		if end < 0 {
			s++
			continue
		}
		spans = append(spans, Span{Kind: kind, Start: s, End: end})
		s = end
	}
	return spans
}

func isDelim(runes []rune, at, n int) bool {
	if at+n > len(runes) {
		return false
	}
	for i := at; i < at+n; i++ {
		if runes[i] != '*' {
			return false
		}
	}
	return true
}

// byteToRune maps every byte offset of text (and len(text)) to the rune
// offset of the rune that starts there.
func byteToRune(text string) []int {
	idx := make([]int, len(text)+1)
	r := 0
	for b := 0; b < len(text); {
		_, size := utf8.DecodeRuneInString(text[b:])
		for i := 0; i < size; i++ {
			idx[b+i] = r
		}
		b += size
		r++
	}
	idx[len(text)] = r
	return idx
}
