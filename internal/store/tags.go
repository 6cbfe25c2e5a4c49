package store

import (
	"slices"
	"strings"

	"github.com/nhle/todolist/internal/model"
)

// Tags returns every tag in creation order.
func (s *Store) Tags() []model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tags)
}

// Tag returns the tag with the given id.
func (s *Store) Tag(id string) (model.Tag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexTag(id)
	if i < 0 {
		return model.Tag{}, false
	}
	return s.tags[i], true
}

// AddTag appends a new tag. An empty color selects the first palette entry.
func (s *Store) AddTag(name, color string) (model.Tag, error) {
	name, color, err := s.validateTag(name, color)
	if err != nil {
		return model.Tag{}, err
	}
	s.errors.Dismiss()

	s.mu.Lock()
	tag := model.Tag{
		ID:        s.ids.NewID(),
		Name:      name,
		Color:     color,
		CreatedAt: s.now(),
	}
	s.tags = append(slices.Clone(s.tags), tag)
	s.saveTagsLocked()
	s.mu.Unlock()

	s.logger.Debug("tag added", "id", tag.ID, "name", tag.Name)
	s.notify()
	return tag, nil
}

// UpdateTag replaces the name and color of the tag with the given id.
func (s *Store) UpdateTag(id, name, color string) error {
	name, color, err := s.validateTag(name, color)
	if err != nil {
		return err
	}
	s.errors.Dismiss()

	s.mu.Lock()
	i := s.indexTag(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	tags := slices.Clone(s.tags)
	tags[i].Name = name
	tags[i].Color = color
	s.tags = tags
	s.saveTagsLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// DeleteTag removes the tag with the given id and every reference to it.
func (s *Store) DeleteTag(id string) {
	s.mu.Lock()
	i := s.indexTag(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.tags = slices.Delete(slices.Clone(s.tags), i, i+1)

	now := s.now()
	todos := slices.Clone(s.todos)
	changed := 0
	for j, t := range todos {
		if !t.HasTag(id) {
			continue
		}
		next := t.Clone()
		next.Tags = slices.DeleteFunc(next.Tags, func(tagID string) bool { return tagID == id })
		next.UpdatedAt = now
		if next.UpdatedAt.Before(next.CreatedAt) {
			next.UpdatedAt = next.CreatedAt
		}
		todos[j] = next
		changed++
	}
	s.todos = todos

	s.saveTagsLocked()
	if changed > 0 {
		s.saveTodosLocked()
	}
	s.mu.Unlock()

	s.logger.Debug("tag deleted", "id", id, "todos", changed)
	s.notify()
}

func (s *Store) validateTag(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", s.fail(MsgEmptyTagName)
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = model.TagPalette[0]
	}
	if !model.ValidColor(color) {
		return "", "", s.fail(MsgInvalidColor)
	}
	return name, color, nil
}

func (s *Store) indexTag(id string) int {
	return slices.IndexFunc(s.tags, func(t model.Tag) bool { return t.ID == id })
}
