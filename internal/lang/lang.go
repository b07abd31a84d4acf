// Package lang detects the script of free-text city queries and romanizes Cyrillic input.
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Script is the writing system a query is classified as.
type Script string

const (
	ScriptCyrillic Script = "cyrillic"
	ScriptLatin    Script = "latin"
	ScriptUnknown  Script = "unknown"
)

// translit maps every letter of the Russian alphabet to 1-2 Latin letters.
var translit = map[rune]string{
	'А': "A", 'а': "a",
	'Б': "B", 'б': "b",
	'В': "V", 'в': "v",
	'Г': "G", 'г': "g",
	'Д': "D", 'д': "d",
	'Е': "E", 'е': "e",
	'Ё': "E", 'ё': "e",
	'Ж': "Zh", 'ж': "zh",
	'З': "Z", 'з': "z",
	'И': "I", 'и': "i",
	'Й': "J", 'й': "j",
	'К': "K", 'к': "k",
	'Л': "L", 'л': "l",
	'М': "M", 'м': "m",
	'Н': "N", 'н': "n",
	'О': "O", 'о': "o",
	'П': "P", 'п': "p",
	'Р': "R", 'р': "r",
	'С': "S", 'с': "s",
	'Т': "T", 'т': "t",
	'У': "U", 'у': "u",
	'Ф': "F", 'ф': "f",
	'Х': "H", 'х': "h",
	'Ц': "Ts", 'ц': "ts",
	'Ч': "Ch", 'ч': "ch",
	'Ш': "Sh", 'ш': "sh",
	'Щ': "Sc", 'щ': "sc",
	'Ъ': "Ie", 'ъ': "ie",
	'Ы': "Y", 'ы': "y",
	'Ь': "J", 'ь': "j",
	'Э': "E", 'э': "e",
	'Ю': "Yu", 'ю': "yu",
	'Я': "Ya", 'я': "ya",
}

// DetectScript classifies text. Any Cyrillic letter wins over Latin letters.
func DetectScript(text string) Script {
	hasLatin := false
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) && unicode.IsLetter(r) {
			return ScriptCyrillic
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			hasLatin = true
		}
	}
	if hasLatin {
		return ScriptLatin
	}
	return ScriptUnknown
}

// Transliterate romanizes Russian letters and passes every other character through.
func Transliterate(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text) * 2)
	for _, r := range text {
		if latin, ok := translit[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// QueryLanguage is the two-letter language tag used for provider lookups and descriptions.
func QueryLanguage(s Script) string {
	if s == ScriptCyrillic {
		return "ru"
	}
	return "en"
}

// Query keeps the original input next to its searchable form.
type Query struct {
	Original       string
	Script         Script
	Transliterated string
}

// Normalize trims and NFC-composes text, classifies it and, for Cyrillic input,
// computes the romanized variant.
func Normalize(text string) Query {
	text = norm.NFC.String(strings.TrimSpace(text))
	q := Query{Original: text, Script: DetectScript(text)}
	if q.Script == ScriptCyrillic {
		q.Transliterated = Transliterate(text)
	}
	return q
}

// Language returns the query language tag ("ru" or "en").
func (q Query) Language() string {
	return QueryLanguage(q.Script)
}
