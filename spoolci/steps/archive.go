package steps

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vikavorkin/Spoolman/spoolci/types"
)

// ArchiveStep packages a file or directory into a zip archive. Walk
// order is lexical, so the same input tree always produces the same
// entry order.
type ArchiveStep struct {
	Path string
	Dest string
	Dir  string
}

func NewArchiveStep(with map[string]string, workdir string) (Step, error) {
	if with["path"] == "" {
		return nil, fmt.Errorf("archive requires a path parameter")
	}
	if with["dest"] == "" {
		return nil, fmt.Errorf("archive requires a dest parameter")
	}

	return &ArchiveStep{
		Path: with["path"],
		Dest: with["dest"],
		Dir:  workdir,
	}, nil
}

func (a *ArchiveStep) Execute(ctx context.Context, runtime *types.Runtime) error {
	srcRel, err := expandEnv(a.Path, runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}
	destRel, err := expandEnv(a.Dest, runtime.Env)
	if err != nil {
		return fmt.Errorf("failed to expand dest: %w", err)
	}

	src := resolvePath(runtime, a.Dir, srcRel)
	dest := resolvePath(runtime, a.Dir, destRel)

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("archive source %s not found: %w", srcRel, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destRel, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", destRel, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if info.IsDir() {
		err = addDir(zw, src, dest)
	} else {
		err = addFile(zw, src, filepath.Base(src))
	}
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to build archive %s: %w", destRel, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive %s: %w", destRel, err)
	}

	return nil
}

// addDir archives every file under root except the archive itself,
// which may live inside the tree it packages.
func addDir(zw *zip.Writer, root, dest string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if path == dest {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		return addFile(zw, path, filepath.ToSlash(rel))
	})
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)
	return err
}

func (a *ArchiveStep) DryRun(ctx context.Context, runtime *types.Runtime) string {
	return fmt.Sprintf("archive: %s to %s", a.Path, a.Dest)
}
