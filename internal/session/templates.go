package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Template is one read-only catalog entry loaded from a .sql file.
type Template struct {
	Name        string `json:"name"`
	Query       string `json:"query"`
	Description string `json:"description,omitempty"`
}

// templateMeta is the optional YAML sidecar next to a template file. For
// reports/top_users.sql the sidecar is reports/top_users.yaml.
type templateMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog is the read-only template collection, loaded from a directory of
// .sql files and hot-reloaded when the directory changes.
type Catalog struct {
	dir    string
	logger *slog.Logger

	mu        sync.RWMutex
	templates map[string]*Template
	onReload  func()
}

// NewCatalog loads the templates under dir. A missing directory yields an
// empty catalog rather than an error so a fresh workspace starts clean.
func NewCatalog(dir string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Catalog{
		dir:       dir,
		logger:    logger,
		templates: make(map[string]*Template),
	}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// OnReload registers a hook invoked after every successful watch-triggered
// reload. Used to notify connected clients.
func (c *Catalog) OnReload(fn func()) {
	c.mu.Lock()
	c.onReload = fn
	c.mu.Unlock()
}

// List returns the templates sorted by name.
func (c *Catalog) List() []*Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the template with the given name, or nil.
func (c *Catalog) Get(name string) *Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.templates[name]
}

// Watch reloads the catalog whenever the template directory changes. It
// blocks until the context is cancelled and is meant to run in its own
// goroutine. Events are debounced so editors that write in bursts trigger
// one reload.
func (c *Catalog) Watch(ctx context.Context) error {
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		// No directory to watch; stay idle so the server keeps running
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("failed to watch template dir: %w", err)
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			ext := filepath.Ext(event.Name)
			if ext != ".sql" && ext != ".yaml" {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				if err := c.reload(); err != nil {
					c.logger.Warn("template reload failed", "error", err)
					return
				}
				c.logger.Debug("templates reloaded", "dir", c.dir)
				c.mu.RLock()
				hook := c.onReload
				c.mu.RUnlock()
				if hook != nil {
					hook()
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("template watcher error", "error", err)
		}
	}
}

// reload rescans the directory and swaps the template set atomically.
func (c *Catalog) reload() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.mu.Lock()
			c.templates = make(map[string]*Template)
			c.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read template dir: %w", err)
	}

	fresh := make(map[string]*Template)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		t, err := c.loadTemplate(entry.Name())
		if err != nil {
			c.logger.Warn("skipping template", "file", entry.Name(), "error", err)
			continue
		}
		fresh[t.Name] = t
	}

	c.mu.Lock()
	c.templates = fresh
	c.mu.Unlock()
	return nil
}

func (c *Catalog) loadTemplate(filename string) (*Template, error) {
	query, err := os.ReadFile(filepath.Join(c.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	t := &Template{
		Name:  strings.TrimSuffix(filename, ".sql"),
		Query: strings.TrimSpace(string(query)),
	}

	sidecar := filepath.Join(c.dir, strings.TrimSuffix(filename, ".sql")+".yaml")
	if data, err := os.ReadFile(sidecar); err == nil {
		var meta templateMeta
		if err := yaml.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("failed to parse sidecar: %w", err)
		}
		if meta.Name != "" {
			t.Name = meta.Name
		}
		t.Description = meta.Description
	}
	return t, nil
}
