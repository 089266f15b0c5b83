// Package biometrics normalizes base64 image payloads received from the
// benefits directory or edited by hand.
package biometrics

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode"

	"github.com/spf13/cast"
)

var ErrInvalidPayload = errors.New("invalid base64 payload")

const dataURIPrefix = "data:image"

var signatures = []struct {
	prefix string
	mime   string
}{
	{"/9j/", "image/jpeg"},
	{"iVBOR", "image/png"},
	{"R0lGOD", "image/gif"},
}

// Sanitize accepts a bare base64 string or an object exposing a "photo"
// field and returns the bare payload: the part after the last comma of a
// data URI, with all whitespace removed. Any other shape yields "".
func Sanitize(raw any) string {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case map[string]any:
		s = cast.ToString(v["photo"])
	case map[string]string:
		s = v["photo"]
	default:
		return ""
	}

	if i := strings.LastIndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// InferImageSrc turns a payload into an embeddable data URI. The signature
// table is checked in order JPEG, PNG, GIF; unknown payloads get an untyped
// image URI.
func InferImageSrc(payload string) string {
	if payload == "" || strings.HasPrefix(payload, dataURIPrefix) {
		return payload
	}
	for _, sig := range signatures {
		if strings.HasPrefix(payload, sig.prefix) {
			return "data:" + sig.mime + ";base64," + payload
		}
	}
	return dataURIPrefix + ";base64," + payload
}

// ValidateEditable checks a hand-edited payload. The trimmed candidate is
// returned only when it decodes as standard base64.
func ValidateEditable(candidate string) (string, error) {
	trimmed := strings.TrimSpace(candidate)
	if _, err := base64.StdEncoding.DecodeString(trimmed); err != nil {
		return "", errors.Join(ErrInvalidPayload, err)
	}
	return trimmed, nil
}
