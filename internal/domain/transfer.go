package domain

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// TransferRequest is one file submission.
type TransferRequest struct {
	// FileName is used verbatim as the stored file name.
	FileName string

	// Content is the raw payload.
	Content io.Reader
}

// TransferResult describes a stored file. It is created once per request,
// right after the content has been written.
type TransferResult struct {
	// Path is the stored location, e.g. "uploads/sample.txt".
	Path string `json:"path"`

	// FileName is the name the client supplied.
	FileName string `json:"filename"`

	// Size is the number of bytes written.
	Size int64 `json:"size"`

	// Digest is the hex SHA3-256 of the content.
	Digest string `json:"sha3_256"`
}

// Info returns the human-readable acknowledgement.
func (r TransferResult) Info() string {
	return fmt.Sprintf("file '%s' saved at '%s'", r.FileName, r.Path)
}

// ValidateFileName rejects names that would escape or alias the upload
// directory. Names are never rewritten: a name is stored as given or refused.
func ValidateFileName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidFileName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidFileName, name)
	case filepath.IsAbs(name) || filepath.VolumeName(name) != "":
		return fmt.Errorf("%w: %q is absolute", ErrInvalidFileName, name)
	}
	return nil
}
