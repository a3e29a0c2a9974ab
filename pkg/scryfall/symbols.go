package scryfall

import (
	"regexp"
	"strings"
)

// SymbolBaseURL is where Scryfall serves its symbol SVGs.
const SymbolBaseURL = "https://img.scryfall.com/symbology/"

var symbolPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// SymbolURL returns the SVG URL for a symbol given either bare ("W") or in
// braces ("{U}"). Hybrid and Phyrexian separators are dropped ("{W/U}" -> WU).
func SymbolURL(symbol string) string {
	return SymbolBaseURL + symbolCode(symbol) + ".svg"
}

func symbolCode(symbol string) string {
	s := strings.TrimSpace(symbol)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	return strings.ToUpper(strings.ReplaceAll(s, "/", ""))
}

// EmojiTransform returns a TextTransform replacing every "{X}" symbol with
// prefix+X+suffix, e.g. EmojiTransform(":mana-", ":") turns "{2}{G}" into
// ":mana-2::mana-G:".
func EmojiTransform(prefix, suffix string) TextTransform {
	return func(text string) string {
		if !strings.Contains(text, "{") {
			return text
		}
		return symbolPattern.ReplaceAllStringFunc(text, func(m string) string {
			return prefix + symbolCode(m) + suffix
		})
	}
}

// Slackify renders symbols as Slack emoji (":mana-G:").
func Slackify() TextTransform { return EmojiTransform(":mana-", ":") }

// Discordify renders symbols as Discord emoji (":manaG:").
func Discordify() TextTransform { return EmojiTransform(":mana", ":") }
