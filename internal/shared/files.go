package shared

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// CopyFile copies srcPath to destPath, creating the destination directory
// when needed. An existing destination is truncated.
func CopyFile(srcPath string, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open source file").
			WithCause(err)
	}
	defer srcFile.Close()
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create destination directory").
			WithCause(err)
	}
	destFile, err := os.Create(destPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create destination file").
			WithCause(err)
	}
	if _, err := io.Copy(destFile, srcFile); err != nil {
		_ = destFile.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy file").
			WithCause(err)
	}
	if err := destFile.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to flush destination file").
			WithCause(err)
	}
	return nil
}

// PathExists reports whether path exists, regardless of its type.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyTree copies the directory srcDir to destDir, keeping file modes.
// Symlinks to files are copied as regular files; symlinks to directories
// are skipped.
func CopyTree(srcDir string, destDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to read source tree").
				WithCause(err)
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to resolve relative path").
				WithCause(err)
		}
		target := filepath.Join(destDir, rel)
		info, err := os.Stat(path)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to stat source entry").
				WithCause(err)
		}
		if d.IsDir() {
			if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to create destination directory").
					WithCause(err)
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		if err := CopyFile(path, target); err != nil {
			return err
		}
		if err := os.Chmod(target, info.Mode().Perm()); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to set file mode").
				WithCause(err)
		}
		return nil
	})
}
