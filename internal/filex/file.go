// Package filex contains small filesystem helpers shared by the vault
// service and the CLI.
package filex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/scampozano/deepurge/internal/common"
)

// EnsureSubdDir resolves dirName against the working directory, unless it
// is already absolute, and creates the directory if missing.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ListRegularFiles walks root and returns the relative paths of all regular
// files, slash-separated and sorted lexicographically. This is the stable
// enumeration order the vault uses for folder sync: it is fixed before any
// upload begins and never depends on traversal or completion order.
func ListRegularFiles(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// WriteFileUnder writes data to relPath interpreted below dir, creating any
// missing parent directories. relPath is a slash-separated relative path,
// typically taken from a folder manifest entry or a token name; both come
// from the sharer, so a path that would resolve outside dir is rejected
// with common.ErrFormat before anything touches the filesystem.
func WriteFileUnder(dir, relPath string, data []byte) (string, error) {
	local := filepath.FromSlash(relPath)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q escapes %s: %w", relPath, dir, common.ErrFormat)
	}

	target := filepath.Join(dir, local)

	if err := os.MkdirAll(filepath.Dir(target), 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o660); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}
