package records

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// DefaultFileName is the record file the harness looks for when none is given.
const DefaultFileName = "data.csv"

// ErrNotFound is returned by Discover when no file matches.
var ErrNotFound = errors.New("record file not found")

// errFound stops the walk once a match is recorded.
var errFound = errors.New("found")

// Discover walks root recursively, in lexical order, and returns the path of
// the first regular file whose base name is exactly name.
func Discover(root, name string) (string, error) {
	if name == "" {
		name = DefaultFileName
	}

	var match string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && d.Name() == name {
			match = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("failed to search %s: %w", root, err)
	}
	if match == "" {
		return "", fmt.Errorf("%w: no %q under %s", ErrNotFound, name, root)
	}
	return match, nil
}
