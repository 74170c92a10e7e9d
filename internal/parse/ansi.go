package parse

import "regexp"

var ansiColorRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes SGR color sequences so output captured with
// --color=always classifies like plain output.
func StripANSI(text string) string {
	return ansiColorRe.ReplaceAllString(text, "")
}
