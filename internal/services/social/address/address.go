// Package address validates account identifiers supplied by callers.
package address

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

// MaxLength is the longest accepted identifier, in bytes.
const MaxLength = 128

// Parse trims input and checks it is a usable opaque identifier. Case is
// preserved; no other canonicalization applies.
func Parse(input string) (storage.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", apperrors.New(apperrors.CodeInvalidArgument, "address is required")
	}
	if len(input) > MaxLength {
		return "", apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("address must be at most %d bytes", MaxLength))
	}
	for _, r := range input {
		if r == utf8.RuneError || unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", apperrors.New(apperrors.CodeInvalidArgument, "address contains invalid characters")
		}
	}
	return storage.Address(input), nil
}

// MustParse is Parse for trusted literals; it panics on invalid input.
func MustParse(input string) storage.Address {
	addr, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return addr
}
