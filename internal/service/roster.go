package service

import "strings"

// MaxRosterSize bounds the number of characters a story may declare.
const MaxRosterSize = 5

// ParseRoster turns the raw comma-separated character string from the story
// creation form into validated names. Order is preserved as first seen;
// names are trimmed and compared case-insensitively for duplicates.
func ParseRoster(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicateCharacter
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, ErrEmptyRoster
	}
	if len(names) > MaxRosterSize {
		return nil, ErrRosterTooLarge
	}
	return names, nil
}
