package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FindLatestJournal returns the most recently modified .jsonl file in dir,
// or "" if there is none.
func FindLatestJournal(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read journal dir: %w", err)
	}

	var latest string
	var latestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// Run ids sort chronologically, so break mtime ties by name.
		if latest == "" || info.ModTime().After(latestTime) ||
			(info.ModTime().Equal(latestTime) && filepath.Join(dir, entry.Name()) > latest) {
			latestTime = info.ModTime()
			latest = filepath.Join(dir, entry.Name())
		}
	}
	return latest, nil
}

// TailJournal writes the last n lines of the file at path to w (all lines
// when n <= 0). With follow set it keeps writing appended data until ctx is
// cancelled.
func TailJournal(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	if err := writeLastLines(w, file, n); err != nil {
		return err
	}
	if !follow {
		return nil
	}
	return followFile(ctx, w, file)
}

// writeLastLines copies the final n lines of r to w and leaves r at EOF.
func writeLastLines(w io.Writer, r io.Reader, n int) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var ring []string
	for scanner.Scan() {
		ring = append(ring, scanner.Text())
		if n > 0 && len(ring) > n {
			ring = ring[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	for _, line := range ring {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// followFile copies data appended to file until ctx is done. It reacts to
// fsnotify write events and also polls, since some filesystems do not
// deliver events.
func followFile(ctx context.Context, w io.Writer, file *os.File) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(file.Name()); err != nil {
		return fmt.Errorf("watch journal: %w", err)
	}

	poll := time.NewTicker(500 * time.Millisecond)
	defer poll.Stop()

	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch journal: %w", err)
		case <-poll.C:
		}
	}
}
