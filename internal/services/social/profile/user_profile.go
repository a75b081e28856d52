// Package profile validates and normalizes user-supplied text: profiles,
// post bodies and comments.
package profile

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
	"golang.org/x/text/unicode/norm"
)

const (
	maxNameLength        = 64
	maxBioLength         = 280
	maxAvatarURILength   = 512
	maxPostTextLength    = 1000
	maxCommentTextLength = 500
	maxContentURILength  = 512
)

// Normalize validates and trims user profile values. Text is NFC-normalized
// before length checks so equivalent input always measures the same.
func Normalize(name string, bio string, avatarURI string) (storage.UserInfo, error) {
	name, err := cleanText("name", name)
	if err != nil {
		return storage.UserInfo{}, err
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return storage.UserInfo{}, invalid("name must be at most %d characters", maxNameLength)
	}
	bio, err = cleanText("bio", bio)
	if err != nil {
		return storage.UserInfo{}, err
	}
	if utf8.RuneCountInString(bio) > maxBioLength {
		return storage.UserInfo{}, invalid("bio must be at most %d characters", maxBioLength)
	}
	avatarURI, err = normalizeURI("avatar uri", avatarURI, maxAvatarURILength)
	if err != nil {
		return storage.UserInfo{}, err
	}
	return storage.UserInfo{
		Name:      name,
		Bio:       bio,
		AvatarURI: avatarURI,
	}, nil
}

// PostText validates a post body and its optional content reference.
// Empty bodies are allowed.
func PostText(text string, contentURI string) (string, string, error) {
	text, err := cleanText("post text", text)
	if err != nil {
		return "", "", err
	}
	if utf8.RuneCountInString(text) > maxPostTextLength {
		return "", "", invalid("post text must be at most %d characters", maxPostTextLength)
	}
	contentURI, err = normalizeURI("content uri", contentURI, maxContentURILength)
	if err != nil {
		return "", "", err
	}
	return text, contentURI, nil
}

// CommentText validates a comment body. Empty bodies are allowed.
func CommentText(text string) (string, error) {
	text, err := cleanText("comment text", text)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(text) > maxCommentTextLength {
		return "", invalid("comment text must be at most %d characters", maxCommentTextLength)
	}
	return text, nil
}

// cleanText rejects invalid UTF-8 before normalizing; stored records must
// decode back to the same text.
func cleanText(field string, value string) (string, error) {
	if !utf8.ValidString(value) {
		return "", invalid("%s must be valid UTF-8", field)
	}
	return norm.NFC.String(strings.TrimSpace(value)), nil
}

func normalizeURI(field string, value string, limit int) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) > limit {
		return "", invalid("%s must be at most %d bytes", field, limit)
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return "", invalid("%s must not contain spaces", field)
	}
	if !utf8.ValidString(value) {
		return "", invalid("%s must be valid UTF-8", field)
	}
	return value, nil
}

func invalid(format string, args ...any) error {
	return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf(format, args...))
}
