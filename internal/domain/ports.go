package domain

import "context"

// ProgramStore persists the most recently used programs. Implementations can
// be in-memory or SQLite backed.
type ProgramStore interface {
	// Recent returns stored programs, most recently used first.
	Recent(ctx context.Context) ([]Program, error)
	Get(ctx context.Context, id string) (*Program, error)
	// Touch stores the program and moves it to the front of the list.
	Touch(ctx context.Context, program Program) error
	Delete(ctx context.Context, id string) error
}

// RecentProgramsKey is the collection name the recent list is stored under.
const RecentProgramsKey = "recent_programs"

// MaxRecentPrograms caps the recent list.
const MaxRecentPrograms = 10
