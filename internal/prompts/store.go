// Package prompts manages the instruction templates used by the agent
// and its tools. Templates live as plain text files under the prompts
// directory so they can be edited while the process is running; the
// store re-reads a file whenever its mtime changes.
package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Well-known prompt names.
const (
	QueryRefine      = "query_refine"
	PaperRank        = "paper_rank"
	Explainer        = "explainer"
	SocialPost       = "social_post"
	PDFAnalysis      = "pdf_analysis"
	InfographicSpec  = "infographic_spec"
	InfographicBrief = "infographic_brief"
	RefExtraction    = "ref_extraction"
	ClaimExtraction  = "claim_extraction"
	ClaimVerdict     = "claim_verdict"
)

type entry struct {
	text    string
	modTime time.Time
}

// Store resolves prompt templates by name, preferring files on disk
// over built-in defaults.
type Store struct {
	mu  sync.Mutex
	dir string
	// cache holds file-backed prompts keyed by name
	cache map[string]entry
}

// NewStore creates a store rooted at dir. An empty dir disables file
// overrides and every lookup falls through to the built-in defaults.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string]entry),
	}
}

// Get returns the template for name. File contents under dir win over
// built-ins; a file edited since the last read is picked up on the
// next call. Unknown names return the empty string.
func (s *Store) Get(name string) string {
	if text, ok := s.fromFile(name); ok {
		return text
	}
	return defaults[name]
}

// Render substitutes {{key}} placeholders in the named template.
func (s *Store) Render(name string, vars map[string]string) string {
	text := s.Get(name)
	for key, val := range vars {
		text = strings.ReplaceAll(text, "{{"+key+"}}", val)
	}
	return text
}

// Names lists all built-in prompt names.
func Names() []string {
	names := make([]string, 0, len(defaults))
	for n := range defaults {
		names = append(names, n)
	}
	return names
}

func (s *Store) fromFile(name string) (string, bool) {
	if s.dir == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name+".txt")
	info, err := os.Stat(path)
	if err != nil {
		delete(s.cache, name)
		return "", false
	}

	if cached, ok := s.cache[name]; ok && cached.modTime.Equal(info.ModTime()) {
		return cached.text, true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	text := string(data)
	s.cache[name] = entry{text: text, modTime: info.ModTime()}
	return text, true
}
