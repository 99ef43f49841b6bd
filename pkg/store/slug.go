package store

import "strings"

// GenerateDeviceID derives a device id from a display name: lowercase ASCII
// letters and digits joined by single underscores. Apostrophes are dropped
// so "Kid's Room" becomes "kids_room". The area is accepted for callers that
// have one but is not part of the id; device names must be unique on their own.
func GenerateDeviceID(_, name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '\'' || r == '’' || r == '`':
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
