package core

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// WriteAsset stores a processed asset under the cache directory, alongside
// a gzip copy that the prod static handler prefers when the client allows.
// Both files are replaced by rename, so readers never see a partial write.
func WriteAsset(cacheDir, name string, content []byte) (string, error) {
	outPath := filepath.Join(cacheDir, "static", name)
	if err := os.MkdirAll(filepath.Dir(outPath), os.ModePerm); err != nil {
		return "", err
	}

	err := replaceFile(outPath, func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
	if err != nil {
		return "", err
	}

	if err := WriteGzip(outPath+".gz", content); err != nil {
		return "", err
	}

	return outPath, nil
}

func WriteGzip(path string, content []byte) error {
	return replaceFile(path, func(w io.Writer) error {
		gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return err
		}
		if _, err := gz.Write(content); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	})
}

func replaceFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
