package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimUnderscores   = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeFileLabel turns free text (hotel names, backup labels) into a
// string safe to embed in an archive file name.
func SanitizeFileLabel(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}
