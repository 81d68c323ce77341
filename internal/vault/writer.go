package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const writeAttempts = 3

// retry runs op up to writeAttempts times with doubling backoff from 100ms
func retry(op func() error) error {
	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(100<<uint(attempt-1)) * time.Millisecond)
		}
		if lastErr = op(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("after %d attempts: %w", writeAttempts, lastErr)
}

// WriteFileAtomic replaces path with content through a temp file in the same
// directory, so readers never see a partial file
func WriteFileAtomic(path string, content []byte) error {
	return retry(func() error { return replaceFile(path, content) })
}

func replaceFile(path string, content []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	return nil
}

// AppendLine appends line plus a newline to path, creating it if needed
func AppendLine(path string, line []byte) error {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}
	return retry(func() error { return appendFile(path, line) })
}

func appendFile(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}
	return f.Sync()
}
