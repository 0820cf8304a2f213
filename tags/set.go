// Package tags keeps the tag list offered when saving documents.
package tags

import (
	"strings"
)

// Set is a deduplicated tag list that remembers insertion order
type Set struct {
	order []string
	index map[string]struct{}
}

// NewSet builds a set, dropping duplicates and empty tags
func NewSet(tags ...string) *Set {
	s := &Set{index: map[string]struct{}{}}
	s.Add(tags...)
	return s
}

// Add inserts tags not yet present
func (s *Set) Add(tags ...string) {
	if s.index == nil {
		s.index = map[string]struct{}{}
	}
	for _, tag := range tags {
		if tag == "" || s.Has(tag) {
			continue
		}
		s.index[tag] = struct{}{}
		s.order = append(s.order, tag)
	}
}

// Remove deletes a tag and reports whether it was present
func (s *Set) Remove(tag string) bool {
	if !s.Has(tag) {
		return false
	}
	delete(s.index, tag)
	for i, t := range s.order {
		if t == tag {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Has(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

func (s *Set) Len() int {
	return len(s.order)
}

// Slice returns a copy of the tags in insertion order
func (s *Set) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Suggestions returns the tags of s that are not in selected
func (s *Set) Suggestions(selected *Set) []string {
	var out []string
	for _, tag := range s.order {
		if selected == nil || !selected.Has(tag) {
			out = append(out, tag)
		}
	}
	return out
}

// FromInput completes a tag typed into a comma terminated input.
// "golang," yields ("golang", true); input without a trailing comma is not complete yet.
func FromInput(input string) (string, bool) {
	if !strings.HasSuffix(input, ",") {
		return "", false
	}
	tag := strings.TrimSpace(strings.TrimSuffix(input, ","))
	return tag, tag != ""
}

// Split parses a comma separated tag list
func Split(list string) []string {
	var out []string
	for _, tag := range strings.Split(list, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
