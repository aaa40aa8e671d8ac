// Package program provides the catalog of runnable programs: the built-in
// drills plus any program files loaded from disk.
package program

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
)

// Catalog holds programs in memory. Safe for concurrent reads.
type Catalog struct {
	mu       sync.RWMutex
	programs map[string]*domain.Program
	log      *logger.Logger
}

// NewCatalog creates a catalog preloaded with the built-in programs.
func NewCatalog(log *logger.Logger) *Catalog {
	c := &Catalog{
		programs: make(map[string]*domain.Program),
		log:      log,
	}
	c.seed()
	return c
}

// List returns summaries of all programs, sorted by title.
func (c *Catalog) List(ctx context.Context) ([]domain.ProgramSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.ProgramSummary, 0, len(c.programs))
	for _, p := range c.programs {
		out = append(out, p.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Get returns a copy of the program with the given ID.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Program, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.programs[id]
	if !ok {
		c.log.Debug("program not found: %s", id)
		return nil, domain.ErrNotFound
	}
	cp := clone(*p)
	return &cp, nil
}

// Search returns programs whose title or row names contain query.
func (c *Catalog) Search(ctx context.Context, query string) ([]domain.ProgramSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(query)
	var out []domain.ProgramSummary
	for _, p := range c.programs {
		if matches(p, q) {
			out = append(out, p.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Add validates p and adds it. An ID already in the catalog is rejected.
func (c *Catalog) Add(p domain.Program) error {
	p, err := Normalize(p)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.programs[p.ID]; ok {
		return fmt.Errorf("program %s: %w", p.ID, domain.ErrAlreadyExists)
	}
	c.programs[p.ID] = &p
	c.log.Debug("catalog: added %s (%d rows)", p.ID, len(p.Rows))
	return nil
}

// LoadDir adds every program file in dir. Files that fail to load are
// logged and skipped; the number of programs added is returned.
func (c *Catalog) LoadDir(dir string) (int, error) {
	files, err := Files(dir)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, path := range files {
		p, err := LoadFile(path)
		if err != nil {
			c.log.Warn("skipping %s: %v", path, err)
			continue
		}
		if err := c.Add(p); err != nil {
			c.log.Warn("skipping %s: %v", path, err)
			continue
		}
		added++
	}
	c.log.Info("loaded %d programs from %s", added, dir)
	return added, nil
}

// Resolve finds a program by reference: a path to a program file, an ID in
// the catalog, or an ID in recent (which may be nil).
func (c *Catalog) Resolve(ctx context.Context, ref string, recent domain.ProgramStore) (*domain.Program, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		p, err := LoadFile(ref)
		if err != nil {
			return nil, err
		}
		return &p, nil
	}

	p, err := c.Get(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) || recent == nil {
		return nil, err
	}
	p, err = recent.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", ref, err)
	}
	return p, nil
}

func matches(p *domain.Program, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	for _, r := range p.Rows {
		if strings.Contains(strings.ToLower(r.Name), query) {
			return true
		}
	}
	return false
}

func clone(p domain.Program) domain.Program {
	cp := p
	cp.Rows = append([]domain.Row(nil), p.Rows...)
	if p.RoleGroups != nil {
		cp.RoleGroups = make([]domain.RoleGroup, len(p.RoleGroups))
		for i, g := range p.RoleGroups {
			g.TimerIDs = append([]string(nil), g.TimerIDs...)
			cp.RoleGroups[i] = g
		}
	}
	return cp
}
