package urilaga

import (
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// IsValidObjectName validates that a name is usable as a flat object key.
// It checks that the name:
//   - is not empty, "." or ".."
//   - contains no path separators (/ or \), so it cannot leave its directory
//   - does not contain the URL-reserved characters ? and #
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20) or DEL (0x7f)
//
// Unlike paths, spaces are allowed since browsers commonly upload them.
func IsValidObjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if strings.ContainsAny(name, `/\?#`) {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || (unicode.IsSpace(r) && r != ' ') {
			return false
		}
	}

	return true
}

// ObjectName builds the storage key for an uploaded file as
// "<unix-millis>-<base filename>". Two uploads of the same filename within the
// same millisecond collide.
func ObjectName(now time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + base
}
