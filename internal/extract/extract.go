// Package extract recovers a patient name and an 11-digit social security
// number (NSS) from raw OCR text of a photographed clinic card.
//
// Extraction is advisory: absence is reported through empty fields, never
// through an error, and the caller decides whether to warn staff.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NSSLength is the fixed width of the clinic identifier.
const NSSLength = 11

// Source names the rule that produced an identifier.
type Source string

const (
	SourceNone Source = ""
	// SourceNormalized means an exact 11-digit run was found after removing
	// spaces, hyphens and line breaks from the whole text.
	SourceNormalized Source = "normalized"
	// SourceSocialSecurityLine means the digits were gathered from the first
	// line mentioning "seguro social" that holds at least 11 digits.
	SourceSocialSecurityLine Source = "social-security-line"
)

var (
	// The card prints the label and the name on two fixed lines.
	nameTemplate = regexp.MustCompile(`NOMBRE:\s*(.*?)\n(.*?)\n`)

	digitRun         = regexp.MustCompile(`\p{Nd}+`)
	socialSecurityRe = regexp.MustCompile(`(?i)seg.*?social`)

	normalizer = strings.NewReplacer(" ", "", "-", "", "\n", "", "\r", "")
)

// Result is the advisory pre-fill produced from OCR text.
type Result struct {
	Name             string `json:"name,omitempty"`
	Identifier       string `json:"identifier,omitempty"`
	IdentifierSource Source `json:"identifierSource,omitempty"`
}

// HasName reports whether the name template was found.
func (r Result) HasName() bool { return r.Name != "" }

// HasIdentifier reports whether an NSS was recovered.
func (r Result) HasIdentifier() bool { return r.Identifier != "" }

// FromText runs name and identifier extraction over text. It is a pure
// function and safe for concurrent use.
func FromText(text string) Result {
	if text == "" {
		return Result{}
	}

	res := Result{Name: Name(text)}
	res.Identifier, res.IdentifierSource = Identifier(text)
	return res
}

// Name returns "<rest of label line> <next line>" for the first NOMBRE:
// label, or "" when the label is missing.
func Name(text string) string {
	m := nameTemplate.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1]) + " " + strings.TrimSpace(m[2])
}

// Identifier applies the two-tier NSS policy. The line fallback only runs
// when the normalized text holds no exact 11-digit run.
func Identifier(text string) (string, Source) {
	if nss := fromNormalized(text); nss != "" {
		return nss, SourceNormalized
	}
	if nss := fromSocialSecurityLine(text); nss != "" {
		return nss, SourceSocialSecurityLine
	}
	return "", SourceNone
}

// fromNormalized returns the leftmost digit run of exactly NSSLength digits.
// A longer run is skipped whole, even if it embeds 11 digits.
func fromNormalized(text string) string {
	clean := normalizer.Replace(text)
	for _, run := range digitRun.FindAllString(clean, -1) {
		if utf8.RuneCountInString(run) == NSSLength {
			return foldDigits(run)
		}
	}
	return ""
}

func fromSocialSecurityLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if !socialSecurityRe.MatchString(line) {
			continue
		}
		digits := make([]byte, 0, NSSLength)
		for _, r := range line {
			if unicode.IsDigit(r) {
				digits = append(digits, asciiDigit(r))
			}
		}
		if len(digits) >= NSSLength {
			return string(digits[:NSSLength])
		}
	}
	return ""
}

// foldDigits rewrites a run of decimal digits from any script as ASCII.
func foldDigits(run string) string {
	var b strings.Builder
	b.Grow(len(run))
	for _, r := range run {
		b.WriteByte(asciiDigit(r))
	}
	return b.String()
}

// asciiDigit maps a decimal digit to '0'-'9'. Unicode encodes every
// decimal digit set as contiguous zero-to-nine blocks.
func asciiDigit(r rune) byte {
	if r >= '0' && r <= '9' {
		return byte(r)
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return byte('0' + (r-start)%10)
}
