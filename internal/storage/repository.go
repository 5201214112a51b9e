package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Document is one JSON value stored under a key.
type Document struct {
	Key       string
	Body      []byte
	UpdatedAt time.Time
}

type Documents interface {
	Get(ctx context.Context, key string) (Document, error)
	Put(ctx context.Context, key string, body []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

const (
	KeyTasks         = "tasks"
	KeyReminders     = "reminders"
	KeyFocusedTaskID = "focusedTaskId"
	canvasPrefix     = "canvas:"
	collapsedPrefix  = "collapsed:"
)

func CanvasKey(taskID string) string {
	return canvasPrefix + taskID
}

func CollapsedKey(name string) string {
	return collapsedPrefix + name
}
