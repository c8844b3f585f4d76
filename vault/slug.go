package vault

import (
	"strings"
	"unicode"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// maxSlugLen bounds the filename stem derived from a note title.
const maxSlugLen = 60

// slugify turns a title into a filesystem-safe filename stem: lowercase,
// alphanumeric runs joined by single hyphens, bounded length. When
// nothing usable remains, a prefix of the fingerprint serves as the stem
// so every note always gets a stable name.
func slugify(title string, fingerprint core.Fingerprint) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		fp := string(fingerprint)
		if len(fp) > 12 {
			fp = fp[:12]
		}
		slug = "note-" + fp
	}
	return slug
}
