package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Bracketed decorations upload titles carry, e.g. "(Official Video)".
	titleDecoration = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*\b(official|video|audio|lyrics?|visuali[sz]er|hd|hq|4k|remaster(ed)?|explicit|clean)\b[^\)\]]*[\)\]]`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// foldTitle returns a fresh chain per call; transformers are stateful.
func foldTitle() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
		cases.Fold(),
	)
}

// StripTitle removes upload decorations from a title, keeping its case.
func StripTitle(title string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(titleDecoration.ReplaceAllString(title, ""), " "))
}

// NormalizeTitle reduces a title to a comparable form: decorations
// stripped, accents removed, case folded.
func NormalizeTitle(title string) string {
	folded, _, err := transform.String(foldTitle(), StripTitle(title))
	if nil != err {
		return strings.ToLower(StripTitle(title))
	}

	return folded
}
