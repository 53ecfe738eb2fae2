package catalog

import "strings"

// NormalizeISBN strips hyphens and spaces and upper-cases a trailing
// ISBN-10 check character.
func NormalizeISBN(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		case r == '-' || r == ' ':
			// separator, dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidISBN reports whether isbn is a well-formed ISBN-10 or ISBN-13
// with a correct check digit. Input must already be normalized.
func ValidISBN(isbn string) bool {
	switch len(isbn) {
	case 10:
		return validISBN10(isbn)
	case 13:
		return validISBN13(isbn)
	default:
		return false
	}
}

func validISBN10(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += (10 - i) * v
	}
	return sum%11 == 0
}

func validISBN13(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
