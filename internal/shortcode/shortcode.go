// Package shortcode описывает грамматику коротких кодов и генерирует случайные коды.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

const (
	// Alphabet допустимые символы кода.
	Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// GeneratedLength длина генерируемого кода.
	GeneratedLength = 7
	MinLength       = 6
	MaxLength       = 8
)

var codeRegex = regexp.MustCompile(`^[a-z0-9]{6,8}$`)

// IsValid проверяет код на соответствие грамматике `^[a-z0-9]{6,8}$`.
func IsValid(code string) bool {
	return codeRegex.MatchString(code)
}

// Generate возвращает случайный код длины GeneratedLength из алфавита Alphabet.
func Generate() (string, error) {
	alphabetLen := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, GeneratedLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}
