package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const filePrefix = "telehealth-"

var numberedFile = regexp.MustCompile(`^telehealth-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingFile is an io.Writer that starts a new file every ISO week and
// whenever the current file would grow past maxSize. Files older than the
// retention window are removed by Cleanup.
type RotatingFile struct {
	dir       string
	retention time.Duration
	maxSize   int64

	mu   sync.Mutex
	file *os.File
	week string
	size int64

	now func() time.Time
}

// NewRotatingFile creates the directory if needed. maxSize <= 0 disables
// size rotation.
func NewRotatingFile(dir string, retentionWeeks int, maxSize int64) (*RotatingFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &RotatingFile{
		dir:       dir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxSize:   maxSize,
		now:       time.Now,
	}, nil
}

func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	week := weekKey(rf.now())
	switch {
	case rf.file == nil || rf.week != week:
		if err := rf.open(week, false); err != nil {
			return 0, err
		}
	case rf.maxSize > 0 && rf.size+int64(len(p)) > rf.maxSize:
		if err := rf.open(week, true); err != nil {
			return 0, err
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// open switches to the file for week. With full set the current file is
// known to be at its limit and a new numbered file is started.
func (rf *RotatingFile) open(week string, full bool) error {
	if rf.file != nil {
		_ = rf.file.Close()
		rf.file = nil
	}

	name := rf.pickFile(week, full)
	path := filepath.Join(rf.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rf.file = f
	rf.week = week
	rf.size = 0
	if info, err := f.Stat(); err == nil {
		rf.size = info.Size()
	}
	return nil
}

// pickFile returns the base file of the week while it has room, then the
// highest numbered file while it has room, then the next number.
func (rf *RotatingFile) pickFile(week string, full bool) string {
	base := filePrefix + week + ".log"
	if !full && rf.hasRoom(base) {
		return base
	}

	highest := 0
	matches, _ := filepath.Glob(filepath.Join(rf.dir, filePrefix+week+"_??.log"))
	for _, m := range matches {
		sub := numberedFile.FindStringSubmatch(filepath.Base(m))
		if len(sub) < 2 {
			continue
		}
		if n, _ := strconv.Atoi(sub[1]); n > highest {
			highest = n
		}
	}

	if highest > 0 && !full {
		last := fmt.Sprintf("%s%s_%02d.log", filePrefix, week, highest)
		if rf.hasRoom(last) {
			return last
		}
	}
	return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, highest+1)
}

func (rf *RotatingFile) hasRoom(name string) bool {
	info, err := os.Stat(filepath.Join(rf.dir, name))
	if err != nil {
		return true
	}
	return rf.maxSize <= 0 || info.Size() < rf.maxSize
}

// Cleanup removes log files last modified before the retention window and
// returns how many were deleted
func (rf *RotatingFile) Cleanup() (int, error) {
	entries, err := os.ReadDir(rf.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := rf.now().Add(-rf.retention)
	deleted := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(rf.dir, name)) == nil {
			deleted++
		}
	}
	return deleted, nil
}

// CurrentFile returns the name of the file being written, empty before the
// first write
func (rf *RotatingFile) CurrentFile() string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return ""
	}
	return filepath.Base(rf.file.Name())
}

func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}
