package blocks

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	splitWordsPattern  = regexp.MustCompile(`[_\-\s]+`)
	labelFormatPattern = regexp.MustCompile(`\{(\w+)\}`)
)

// maxSummaryLength bounds the label shown in collapsed panel headers.
const maxSummaryLength = 50

// DefaultLabeler turns a block name into a human label, splitting on
// underscores, dashes and camelCase boundaries.
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for i, word := range words {
		if word == "" {
			continue
		}
		word = splitCamel(word)
		if i == 0 {
			word = capitalize(word)
		} else {
			word = strings.ToLower(word)
		}
		segments = append(segments, word)
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// isBoundary reports whether a word break belongs before r, which starts at
// byte offset index of input.
func isBoundary(input string, index int, r rune) bool {
	prev, _ := utf8.DecodeLastRuneInString(input[:index])
	return (unicode.IsLower(prev) && unicode.IsUpper(r)) ||
		(unicode.IsLetter(prev) && unicode.IsDigit(r)) ||
		(unicode.IsDigit(prev) && unicode.IsLetter(r))
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	first, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(first)) + lower[size:]
}

// FormatLabel substitutes {name} placeholders in format using lookup. A
// placeholder whose lookup fails or panics becomes the empty string.
func FormatLabel(format string, lookup func(name string) string) string {
	return labelFormatPattern.ReplaceAllStringFunc(format, func(match string) string {
		name := match[1 : len(match)-1]
		return safeLabel(func() string { return lookup(name) })
	})
}

func safeLabel(fn func() string) (label string) {
	defer func() {
		if recover() != nil {
			label = ""
		}
	}()
	if fn == nil {
		return ""
	}
	return fn()
}

func truncateLabel(label string, max int) string {
	label = strings.TrimSpace(label)
	if max <= 0 || utf8.RuneCountInString(label) <= max {
		return label
	}
	runes := []rune(label)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
