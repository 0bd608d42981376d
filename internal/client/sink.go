package client

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/fsutil"
	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/wire"
)

// FitnessSink receives the final score of a run.
type FitnessSink interface {
	PublishFitness(fitness float64) error
}

// FileSink writes the fitness as ASCII decimal to Path, replacing any
// previous content.
type FileSink struct {
	Path string
	FS   fsutil.FileSystem
}

// NewFileSink creates a sink writing to path on the local filesystem.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path, FS: fsutil.OSFileSystem{}}
}

// PublishFitness implements FitnessSink.
func (s *FileSink) PublishFitness(fitness float64) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := s.FS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create fitness directory: %w", err)
		}
	}
	if err := s.FS.WriteFile(s.Path, []byte(wire.FormatNumber(fitness)), 0o644); err != nil {
		return fmt.Errorf("failed to write fitness file %s: %w", s.Path, err)
	}
	return nil
}

// MemorySink keeps published values in memory.
type MemorySink struct {
	mu     sync.Mutex
	values []float64
}

// PublishFitness implements FitnessSink.
func (s *MemorySink) PublishFitness(fitness float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, fitness)
	return nil
}

// Values returns every published value, oldest first.
func (s *MemorySink) Values() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.values...)
}
