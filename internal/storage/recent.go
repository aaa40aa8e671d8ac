// Package storage keeps the most recently used programs, in memory or in a
// SQLite key-value table.
package storage

import (
	"slices"

	"github.com/hammamikhairi/dojotimer/internal/domain"
)

// touch moves program to the front of list, replacing an older copy with
// the same id, and trims the list to domain.MaxRecentPrograms.
func touch(list []domain.Program, program domain.Program) []domain.Program {
	out := make([]domain.Program, 0, len(list)+1)
	out = append(out, program)
	for _, p := range list {
		if p.ID != program.ID {
			out = append(out, p)
		}
	}
	if len(out) > domain.MaxRecentPrograms {
		out = out[:domain.MaxRecentPrograms]
	}
	return out
}

func find(list []domain.Program, id string) (*domain.Program, error) {
	i := slices.IndexFunc(list, func(p domain.Program) bool { return p.ID == id })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	p := list[i]
	return &p, nil
}

func remove(list []domain.Program, id string) ([]domain.Program, error) {
	i := slices.IndexFunc(list, func(p domain.Program) bool { return p.ID == id })
	if i < 0 {
		return list, domain.ErrNotFound
	}
	return slices.Delete(slices.Clone(list), i, i+1), nil
}
