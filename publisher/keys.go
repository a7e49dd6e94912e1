package publisher

import (
	"path/filepath"
	"strings"

	apperrors "github.com/kbukum/techdocs/errors"
)

// ValidateEntityKey rejects entity keys that could escape their namespace.
func ValidateEntityKey(key string) error {
	return validateKey("entityKey", key)
}

// ValidateRelativePath rejects file paths that could escape an entity's namespace.
func ValidateRelativePath(path string) error {
	return validateKey("relativePath", path)
}

func validateKey(field, key string) error {
	switch {
	case key == "":
		return apperrors.InvalidInput(field, field+" must not be empty")
	case strings.ContainsRune(key, 0):
		return apperrors.InvalidInput(field, field+" must not contain NUL bytes")
	case strings.Contains(key, `\`):
		return apperrors.InvalidInput(field, field+" must use forward slashes")
	case strings.HasPrefix(key, "/") || filepath.IsAbs(key):
		return apperrors.InvalidInput(field, field+" must be relative")
	}
	for seg := range strings.SplitSeq(key, "/") {
		switch seg {
		case "", ".", "..":
			return apperrors.InvalidInput(field, field+" must not contain empty, '.' or '..' segments").
				WithDetail("value", key)
		}
	}
	return nil
}

// objectKey joins an entity key and a relative path into a store key.
func objectKey(entityKey, relativePath string) string {
	return entityKey + "/" + relativePath
}

// entityPrefix is the store prefix under which an entity's files live.
func entityPrefix(entityKey string) string {
	return entityKey + "/"
}
