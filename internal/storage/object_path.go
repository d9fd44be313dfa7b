package storage

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

var errEmptyObject = errors.New("storage: refusing to store an empty object")

// segment keeps lower-case ASCII letters, digits, '-' and '_'.
func segment(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-_")
}

func extension(ext string) string {
	if e := segment(strings.TrimPrefix(strings.TrimSpace(ext), ".")); e != "" {
		return e
	}
	return "bin"
}

// objectKey builds <category>/<name>.<ext>, or <category>/YYYY/MM/DD/<unix nanos>.<ext>
// when the object has no usable name.
func objectKey(obj Object, now time.Time) string {
	category := segment(obj.Category)
	if category == "" {
		category = "misc"
	}
	ext := extension(obj.Ext)
	if name := segment(obj.Name); name != "" {
		return path.Join(category, name+"."+ext)
	}
	now = now.UTC()
	return path.Join(category, now.Format("2006/01/02"), fmt.Sprintf("%d.%s", now.UnixNano(), ext))
}

func contentType(obj Object) string {
	if ct := strings.TrimSpace(obj.ContentType); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension("." + extension(obj.Ext)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func withPrefix(prefix, key string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(key)), "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return cleaned, nil
}
