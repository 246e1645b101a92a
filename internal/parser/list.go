package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	fenceLine   = regexp.MustCompile("(?m)^\\s*```[\\w-]*\\s*$")
	bulletLine  = regexp.MustCompile(`(?m)^\s*(?:[-*•]+|\d+[.)])\s+`)
	labelPrefix = regexp.MustCompile(`(?im)^\s*(?:technical\s+)?(?:skills?|competenc(?:y|ies)|technologies)\s*:\s*`)
	parenNote   = regexp.MustCompile(`\s*\([^()]*\)`)
	separators  = strings.NewReplacer(";", ",", "|", ",", "\r\n", ",", "\n", ",", "\t", " ")
)

// ParseList splits a comma-separated reply into tokens. Each token is trimmed
// and capitalized (first letter upper, the rest lower); empty tokens are
// dropped. It never fails: text without commas yields a single token.
func ParseList(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		token := capitalize(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}

// NormalizeList rewrites list-shaped replies into the comma form ParseList
// expects: fences, label prefixes, bullets, numbering and parenthetical notes
// are removed, and semicolons, pipes and newlines become commas.
func NormalizeList(text string) string {
	text = fenceLine.ReplaceAllString(text, "")
	text = labelPrefix.ReplaceAllString(text, "")
	text = bulletLine.ReplaceAllString(text, "")
	text = parenNote.ReplaceAllString(text, "")
	text = separators.Replace(text)

	parts := strings.Split(text, ",")
	kept := parts[:0]
	for _, part := range parts {
		part = strings.TrimRight(strings.Trim(strings.TrimSpace(part), "\"'`"), ".")
		if part == "" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + cases.Lower(language.Und).String(s[size:])
}
