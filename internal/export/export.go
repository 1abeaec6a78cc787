// Package export bundles a generated documentation tree into a single
// zstd-compressed tar archive for publishing.
package export

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"gddoc/internal/logging"
)

// Bundle archives every regular file under srcDir into a .tar.zst at
// outPath, keeping paths relative to srcDir. level is the zstd
// compression level (1 fastest, 22 best). Returns the number of files
// archived.
func Bundle(srcDir, outPath string, level int, logger *logging.Logger) (int, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return 0, fmt.Errorf("failed to create compressor: %w", err)
	}
	tw := tar.NewWriter(zw)

	count := 0
	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if err := addFile(tw, path, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to archive %s: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		tw.Close()
		zw.Close()
		return 0, err
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return 0, fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish compression: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("failed to close archive: %w", err)
	}

	logger.Info("Wrote documentation bundle", map[string]interface{}{
		"path":  outPath,
		"files": count,
	})
	return count, nil
}

func addFile(tw *tar.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
