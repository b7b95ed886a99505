package entity

import "regexp"

const (
	// ShortcodeAlphabet is the set of characters a shortcode may contain.
	ShortcodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	// ShortcodeLength is the exact length of a shortcode.
	ShortcodeLength = 6
)

var shortcodeRe = regexp.MustCompile(`^[0-9a-zA-Z_]{6}$`)

// IsValidShortcode reports whether code matches the shortcode format.
func IsValidShortcode(code string) bool {
	return shortcodeRe.MatchString(code)
}
