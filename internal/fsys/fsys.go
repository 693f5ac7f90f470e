// Package fsys implements the FileSystem collaborator actions.Deps expects:
// a sandboxed working directory holding a user-editable todo list and the
// numbered files SaveExtractedContent writes.
package fsys

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const todoFilename = "todo.md"
const extractedDir = "extracted_content"

// FileSystem is the on-disk collaborator injected into action handlers as
// actions.Deps.FileSystem. All paths are resolved under root; callers
// never see or control absolute paths.
type FileSystem struct {
	mu   sync.Mutex
	root string
	next int
}

// New creates the filesystem rooted at root, creating it and the
// extracted-content subdirectory if they don't exist.
func New(root string) (*FileSystem, error) {
	if err := os.MkdirAll(filepath.Join(root, extractedDir), 0o755); err != nil {
		return nil, fmt.Errorf("fsys: create workspace at %s: %w", root, err)
	}
	fs := &FileSystem{root: root}
	fs.next = fs.nextIndex()
	return fs, nil
}

// Describe returns a short human-readable summary shown in the rolling
// prompt's state message.
func (f *FileSystem) Describe() string {
	return fmt.Sprintf("workspace at %s (todo.md, %s/)", f.root, extractedDir)
}

// GetTodoContents returns the current todo.md contents, or an empty string
// if it hasn't been written yet.
func (f *FileSystem) GetTodoContents() string {
	data, err := os.ReadFile(filepath.Join(f.root, todoFilename))
	if err != nil {
		return ""
	}
	return string(data)
}

// WriteTodo overwrites todo.md.
func (f *FileSystem) WriteTodo(content string) error {
	return atomicWrite(filepath.Join(f.root, todoFilename), []byte(content))
}

// SaveExtractedContent writes content to its own numbered file under
// extracted_content/ and returns the filename relative to root, which
// ReadFile accepts.
func (f *FileSystem) SaveExtractedContent(content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	name := fmt.Sprintf("%s/extract_%d.md", extractedDir, f.next)
	path := filepath.Join(f.root, filepath.FromSlash(name))
	if err := atomicWrite(path, []byte(content)); err != nil {
		return "", fmt.Errorf("fsys: save extracted content: %w", err)
	}
	return name, nil
}

// ReadFile reads a file previously referenced by name (as returned from
// SaveExtractedContent or a path in AvailableFilePaths).
func (f *FileSystem) ReadFile(name string) (string, error) {
	path := filepath.Join(f.root, filepath.FromSlash(name))
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(f.root)) {
		return "", fmt.Errorf("fsys: path escapes workspace: %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("fsys: read %s: %w", name, err)
	}
	return string(data), nil
}

// ListExtractedFiles returns the names of every saved extraction, oldest
// first, for populating AvailableFilePaths.
func (f *FileSystem) ListExtractedFiles() []string {
	entries, err := os.ReadDir(filepath.Join(f.root, extractedDir))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, extractedDir+"/"+e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		var a, b int
		_, errA := fmt.Sscanf(filepath.Base(names[i]), "extract_%d.md", &a)
		_, errB := fmt.Sscanf(filepath.Base(names[j]), "extract_%d.md", &b)
		if errA == nil && errB == nil && a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

func (f *FileSystem) nextIndex() int {
	highest := 0
	for _, name := range f.ListExtractedFiles() {
		var n int
		if _, err := fmt.Sscanf(filepath.Base(name), "extract_%d.md", &n); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
