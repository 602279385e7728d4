package authflow

import (
	"net/url"
	"strings"

	"github.com/medhelper/medhelper/internal/common"
)

// ResetLink holds the tokens of a password reset link.
type ResetLink struct {
	UIDB64 string
	Token  string
}

// Valid reports whether both tokens are present.
func (l ResetLink) Valid() bool {
	return l.UIDB64 != "" && l.Token != ""
}

// ParseResetLink looks for /password-reset-confirm/{uidb64}/{token} in raw,
// which may be a path or a full URL. ok is false when raw is not a reset
// link at all; a link with missing segments is reported with ok set and
// empty tokens. The bare /password-reset-confirm path is not a link.
func ParseResetLink(raw string) (link ResetLink, ok bool) {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}

	idx := strings.Index(path, common.ResetConfirmPath+"/")
	if idx < 0 {
		return ResetLink{}, false
	}
	rest := strings.Trim(path[idx+len(common.ResetConfirmPath):], "/")
	if rest == "" {
		return ResetLink{}, false
	}

	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ResetLink{}, true
	}
	return ResetLink{UIDB64: parts[0], Token: parts[1]}, true
}
