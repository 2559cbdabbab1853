package path

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrEmptyFilename   = errors.New("filename cannot be empty")
	ErrInvalidFilename = errors.New("filename format is invalid")
	ErrPathTraversal   = errors.New("filename contains directory traversal")
	ErrFilenameTooLong = errors.New("filename is too long")
)

// MaxFilenameLength matches the asset name column, in characters.
const MaxFilenameLength = 255

const unknownUploaderDir = "unknown_user"

// ValidateFilename rejects names that could escape the uploader's directory or
// overflow the asset name column.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyFilename
	}
	if strings.Contains(name, "..") {
		return ErrPathTraversal
	}
	if strings.ContainsAny(name, "/\\") {
		return ErrPathTraversal
	}
	if strings.Contains(name, "\x00") {
		return ErrInvalidFilename
	}
	if utf8.RuneCountInString(name) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	return nil
}

// TruncateName cuts name to at most max characters.
func TruncateName(name string, max int) string {
	if utf8.RuneCountInString(name) <= max {
		return name
	}
	return string([]rune(name)[:max])
}

// SanitizeFilename strips directory parts and characters that are unsafe in object keys.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "\x00", "_")
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, ".") {
		name = "file_" + name
	}
	if name == "" {
		name = "file"
	}
	return name
}

// StorageKey lays uploads out as user_<uploader>/<random>/<filename>, or
// unknown_user/<random>/<filename> when the uploader is not known.
func StorageKey(uploaderID *uuid.UUID, filename string) string {
	dir := unknownUploaderDir
	if uploaderID != nil && *uploaderID != uuid.Nil {
		dir = fmt.Sprintf("user_%s", uploaderID.String())
	}
	return fmt.Sprintf("%s/%s/%s", dir, uuid.NewString(), SanitizeFilename(filename))
}

// BaseName returns the last element of an object key.
func BaseName(key string) string {
	key = strings.TrimRight(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
