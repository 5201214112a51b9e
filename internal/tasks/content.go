package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandeepkv93/taskline/internal/storage"
)

const notesKey = "notes"

// SaveNotes replaces the task notes in memory at once; the write to the
// document store waits for the debounce delay and the last call wins.
func (s *Store) SaveNotes(id, text string) error {
	s.mu.Lock()
	idx, err := s.getLocked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tasks[idx].Notes = text
	s.mu.Unlock()

	s.debounce.Trigger(notesKey, s.persistTasks)
	return nil
}

// SaveCanvas stores an opaque drawing scene for the task, debounced like
// notes.
func (s *Store) SaveCanvas(id string, scene []byte) error {
	s.mu.Lock()
	if _, err := s.getLocked(id); err != nil {
		s.mu.Unlock()
		return err
	}
	s.canvas[id] = append([]byte(nil), scene...)
	s.mu.Unlock()

	s.debounce.Trigger(storage.CanvasKey(id), func() { s.persistCanvas(id) })
	return nil
}

// Canvas returns the task's scene, or nil when it has none.
func (s *Store) Canvas(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	if scene, ok := s.canvas[id]; ok {
		s.mu.Unlock()
		return append([]byte(nil), scene...), nil
	}
	s.mu.Unlock()

	doc, err := s.docs.Get(ctx, storage.CanvasKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tasks: load canvas: %w", err)
	}
	return doc.Body, nil
}

func (s *Store) persistTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(context.Background()); err != nil {
		s.lastErr = err
		s.logger.Error("debounced save failed", "err", err)
	}
}

// persistCanvas writes under the store lock and skips deleted tasks.
func (s *Store) persistCanvas(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scene, ok := s.canvas[id]
	if !ok || s.indexLocked(id) < 0 {
		return
	}
	if err := s.docs.Put(context.Background(), storage.CanvasKey(id), scene); err != nil {
		s.lastErr = err
		s.logger.Error("debounced canvas save failed", "task", id, "err", err)
	}
}

// Flush writes every pending notes and canvas change now.
func (s *Store) Flush() {
	s.debounce.Flush()
}

// Close flushes pending writes and reports the last write failure, if any.
func (s *Store) Close() error {
	s.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.lastErr
	s.lastErr = nil
	return err
}

func (s *Store) SetFlag(ctx context.Context, name string, v bool) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.docs.Put(ctx, storage.CollapsedKey(name), body); err != nil {
		return fmt.Errorf("tasks: save flag %s: %w", name, err)
	}
	s.mu.Lock()
	s.flags[name] = v
	s.mu.Unlock()
	return nil
}

func (s *Store) Flag(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[name]
}
