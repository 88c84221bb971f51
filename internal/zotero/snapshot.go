package zotero

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// journalSuffixes are the sidecar files SQLite may keep next to a database.
// They hold committed pages that have not been checkpointed yet.
var journalSuffixes = []string{"-wal", "-journal"}

// snapshot copies the store and its sidecars into a fresh temp directory.
// The returned cleanup removes the copy.
func snapshot(storePath string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "zinc-snapshot-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	dst := filepath.Join(dir, filepath.Base(storePath))
	if err := copyFile(storePath, dst); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to snapshot store: %w", err)
	}

	for _, suffix := range journalSuffixes {
		err := copyFile(storePath+suffix, dst+suffix)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			cleanup()
			return "", nil, fmt.Errorf("failed to snapshot %s: %w", suffix, err)
		}
	}

	return dst, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
