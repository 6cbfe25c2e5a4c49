package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/todolist/internal/model"
)

// ErrCorrupt marks a snapshot that could not be decoded.
var ErrCorrupt = errors.New("corrupt snapshot")

// LoadError reports a snapshot that could not be read. The accompanying
// collection is empty and usable.
type LoadError struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s from %q: %v", e.Kind, e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a snapshot that could not be written.
type SaveError struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s to %q: %v", e.Kind, e.Key, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Keys names the slots holding each collection.
type Keys struct {
	Todos string
	Tags  string
}

func (k Keys) of(kind Kind) string {
	if kind == KindTags {
		return k.Tags
	}
	return k.Todos
}

// todoRecord is the stored form of a todo. Priority and Tags may be absent
// in snapshots written before those fields existed.
type todoRecord struct {
	ID        string    `json:"id" msgpack:"id"`
	Text      string    `json:"text" msgpack:"text"`
	Completed bool      `json:"completed" msgpack:"completed"`
	Priority  string    `json:"priority,omitempty" msgpack:"priority,omitempty"`
	Tags      []string  `json:"tags" msgpack:"tags"`
	CreatedAt time.Time `json:"createdAt" msgpack:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" msgpack:"updatedAt"`
}

type tagRecord struct {
	ID        string    `json:"id" msgpack:"id"`
	Name      string    `json:"name" msgpack:"name"`
	Color     string    `json:"color" msgpack:"color"`
	CreatedAt time.Time `json:"createdAt" msgpack:"createdAt"`
}

// Adapter reads and writes whole collections through a Slot.
type Adapter struct {
	slot   Slot
	codec  Codec
	keys   Keys
	logger *log.Logger
}

// NewAdapter returns an Adapter. A nil logger discards output.
func NewAdapter(slot Slot, codec Codec, keys Keys, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Adapter{
		slot:   slot,
		codec:  codec,
		keys:   keys,
		logger: logger.WithPrefix("persist"),
	}
}

// LoadTodos returns the stored todo collection. A missing snapshot yields
// an empty collection and no error. An unreadable or corrupt snapshot is
// logged and yields an empty collection with a *LoadError.
func (a *Adapter) LoadTodos(ctx context.Context) ([]model.Todo, error) {
	var records []todoRecord
	if err := a.load(ctx, KindTodos, &records); err != nil {
		return []model.Todo{}, err
	}
	return a.upgradeTodos(records), nil
}

// LoadTags returns the stored tag collection with the same failure
// semantics as LoadTodos.
func (a *Adapter) LoadTags(ctx context.Context) ([]model.Tag, error) {
	var records []tagRecord
	if err := a.load(ctx, KindTags, &records); err != nil {
		return []model.Tag{}, err
	}
	return a.upgradeTags(records), nil
}

// SaveTodos replaces the stored todo collection.
func (a *Adapter) SaveTodos(ctx context.Context, todos []model.Todo) error {
	records := make([]todoRecord, len(todos))
	for i, t := range todos {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		records[i] = todoRecord{
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Priority:  string(t.Priority),
			Tags:      tags,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		}
	}
	return a.save(ctx, KindTodos, records)
}

// SaveTags replaces the stored tag collection.
func (a *Adapter) SaveTags(ctx context.Context, tags []model.Tag) error {
	records := make([]tagRecord, len(tags))
	for i, t := range tags {
		records[i] = tagRecord(t)
	}
	return a.save(ctx, KindTags, records)
}

func (a *Adapter) load(ctx context.Context, kind Kind, v any) error {
	key := a.keys.of(kind)

	data, err := a.slot.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		a.logger.Debug("no snapshot stored", "kind", kind, "key", key)
		return nil
	}
	if err != nil {
		a.logger.Error("reading snapshot", "kind", kind, "key", key, "err", err)
		return &LoadError{Kind: kind, Key: key, Err: err}
	}

	if checker, ok := a.codec.(SchemaChecker); ok {
		if err := checker.Check(kind, data); err != nil {
			a.logger.Error("snapshot failed validation", "kind", kind, "key", key, "err", err)
			return &LoadError{Kind: kind, Key: key, Err: fmt.Errorf("%w: %w", ErrCorrupt, err)}
		}
	}

	if err := a.codec.Unmarshal(data, v); err != nil {
		a.logger.Error("decoding snapshot", "kind", kind, "key", key, "codec", a.codec.Name(), "err", err)
		return &LoadError{Kind: kind, Key: key, Err: fmt.Errorf("%w: %w", ErrCorrupt, err)}
	}
	return nil
}

func (a *Adapter) save(ctx context.Context, kind Kind, v any) error {
	key := a.keys.of(kind)

	data, err := a.codec.Marshal(v)
	if err != nil {
		return &SaveError{Kind: kind, Key: key, Err: fmt.Errorf("encoding: %w", err)}
	}
	if err := a.slot.Put(ctx, key, data); err != nil {
		return &SaveError{Kind: kind, Key: key, Err: err}
	}
	a.logger.Debug("snapshot saved", "kind", kind, "key", key, "bytes", len(data))
	return nil
}

// upgradeTodos applies defaults to legacy records and drops records that
// would break collection invariants.
func (a *Adapter) upgradeTodos(records []todoRecord) []model.Todo {
	todos := make([]model.Todo, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		text := strings.TrimSpace(r.Text)
		switch {
		case r.ID == "":
			a.logger.Warn("dropping todo without id", "text", r.Text)
			continue
		case seen[r.ID]:
			a.logger.Warn("dropping duplicate todo", "id", r.ID)
			continue
		case text == "":
			a.logger.Warn("dropping todo with empty text", "id", r.ID)
			continue
		}
		seen[r.ID] = true

		priority := model.Priority(r.Priority)
		if !priority.Valid() {
			priority = model.DefaultPriority
		}
		createdAt := r.CreatedAt.UTC()
		updatedAt := r.UpdatedAt.UTC()
		if updatedAt.Before(createdAt) {
			updatedAt = createdAt
		}

		todos = append(todos, model.Todo{
			ID:        r.ID,
			Text:      text,
			Completed: r.Completed,
			Priority:  priority,
			Tags:      model.NormalizeTags(r.Tags),
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}
	return todos
}

func (a *Adapter) upgradeTags(records []tagRecord) []model.Tag {
	tags := make([]model.Tag, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.Name)
		if r.ID == "" || name == "" || seen[r.ID] {
			a.logger.Warn("dropping invalid tag", "id", r.ID, "name", r.Name)
			continue
		}
		seen[r.ID] = true

		color := r.Color
		if color == "" {
			color = model.TagPalette[0]
		}
		tags = append(tags, model.Tag{
			ID:        r.ID,
			Name:      name,
			Color:     color,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return tags
}
