package store

import (
	"strings"
	"unicode"
)

// foldFunc is the SQL function mapping text to its case-folded form. Two
// strings fold equal exactly when strings.EqualFold reports them equal, so
// substring tests on folded text agree with preview highlighting.
const foldFunc = "notes_fold"

// fold maps every rune to the smallest rune of its simple case folding orbit.
func fold(s string) string {
	return strings.Map(foldRune, s)
}

func foldRune(r rune) rune {
	least := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < least {
			least = f
		}
	}
	return least
}
