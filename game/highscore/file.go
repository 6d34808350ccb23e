package highscore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const fileKey = "highscore"

// FileStore persists the high score as a properties file holding a single
// "highscore=<n>" line
type FileStore struct {
	path string

	// mu serializes read-compare-write within the process
	mu sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) LoadHighScore(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// read must be called with mu held
func (s *FileStore) read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read high score file: %w", err)
	}

	return parseProperties(data)
}

func (s *FileStore) SaveHighScore(ctx context.Context, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if score < 0 {
		return ErrNegativeScore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	if score <= current {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create high score directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp high score file: %w", err)
	}
	tmpName := tmp.Name()

	content, err := godotenv.Marshal(map[string]string{fileKey: strconv.Itoa(score)})
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode high score: %w", err)
	}
	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write high score file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write high score file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace high score file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// parseProperties reads the highscore key. '#' comments and other keys are
// ignored; a file without the key holds 0.
func parseProperties(data []byte) (int, error) {
	values, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return 0, fmt.Errorf("parse high score file: %w", err)
	}

	raw, ok := values[fileKey]
	if !ok {
		return 0, nil
	}
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse high score file: %w", err)
	}
	if score < 0 {
		return 0, fmt.Errorf("parse high score file: %w", ErrNegativeScore)
	}
	return score, nil
}
