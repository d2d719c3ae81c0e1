package domain

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// AddCustomActivity creates a custom activity under slug. The first writer wins: an
// existing slug is left untouched.
func AddCustomActivity(slug, name string, template Template) Mutation {
	return func(s State, now time.Time) (State, error) {
		if strings.TrimSpace(slug) == "" {
			return s, fmt.Errorf("add custom activity: %w", ErrBlankName)
		}
		if _, ok := s.CustomActivities[slug]; ok {
			return s, fmt.Errorf("add custom activity %q: %w", slug, ErrAlreadyExists)
		}
		if template == "" {
			template = TemplateNone
		}
		s.CustomActivities = cloneOrNew(s.CustomActivities)
		s.CustomActivities[slug] = CustomActivity{
			Name:     name,
			Template: template,
			Data:     NewRecord(now),
		}
		return s, nil
	}
}

// CreateCustomActivity derives the slug from name and adds the activity. It returns the
// slug so callers can address the new entry.
func CreateCustomActivity(name string, template Template) (string, Mutation) {
	slug := Slugify(name)
	return slug, AddCustomActivity(slug, strings.TrimSpace(name), template)
}

// DeleteCustomActivity removes a custom activity and all of its data.
func DeleteCustomActivity(slug string) Mutation {
	return func(s State, _ time.Time) (State, error) {
		if _, ok := s.CustomActivities[slug]; !ok {
			return s, fmt.Errorf("delete custom activity %q: %w", slug, ErrNotFound)
		}
		s.CustomActivities = maps.Clone(s.CustomActivities)
		delete(s.CustomActivities, slug)
		return s, nil
	}
}
