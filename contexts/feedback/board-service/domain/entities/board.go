package entities

import (
	"crypto/rand"
	"strings"
	"time"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type Board struct {
	BoardID     string
	OwnerID     string
	Name        string
	Description string
	PublicLink  string
	IsPublic    bool
	Theme       Theme
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VisibleTo reports whether viewerID may read the board. Anonymous viewers
// pass an empty id.
func (b Board) VisibleTo(viewerID string) bool {
	if b.IsPublic {
		return true
	}
	viewerID = strings.TrimSpace(viewerID)
	return viewerID != "" && viewerID == b.OwnerID
}

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
	suffixLength         = 6
	suffixAlphabet       = "abcdefghijklmnopqrstuvwxyz0123456789"
	fallbackSlug         = "board"
)

// Slugify lowercases name, maps every character outside [a-z0-9] to a hyphen,
// collapses hyphen runs and trims them from both ends.
func Slugify(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lowered))
	lastHyphen := false
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// RandomSuffix returns six characters drawn uniformly from [a-z0-9].
func RandomSuffix() (string, error) {
	const limit = 256 - 256%len(suffixAlphabet)
	out := make([]byte, 0, suffixLength)
	buf := make([]byte, suffixLength*2)
	for len(out) < suffixLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			if int(c) >= limit {
				continue
			}
			out = append(out, suffixAlphabet[int(c)%len(suffixAlphabet)])
			if len(out) == suffixLength {
				break
			}
		}
	}
	return string(out), nil
}

// PublicLink joins the slug of name with suffix. Names with no usable
// characters fall back to "board".
func PublicLink(name string, suffix string) string {
	base := Slugify(name)
	if base == "" {
		base = fallbackSlug
	}
	return base + "-" + suffix
}
