package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

type MemoryDocuments struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{docs: make(map[string]Document)}
}

func (m *MemoryDocuments) Get(_ context.Context, key string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.Body = append([]byte(nil), doc.Body...)
	return doc, nil
}

func (m *MemoryDocuments) Put(_ context.Context, key string, body []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: document key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = Document{Key: key, Body: append([]byte(nil), body...), UpdatedAt: time.Now().UTC()}
	return nil
}

func (m *MemoryDocuments) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		return ErrNotFound
	}
	delete(m.docs, key)
	return nil
}

func (m *MemoryDocuments) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.docs))
	for key := range m.docs {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}
