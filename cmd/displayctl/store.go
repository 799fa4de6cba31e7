package main

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/displayctl/displayctl-go/pkg/persistence"
	"github.com/displayctl/displayctl-go/pkg/persistence/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore picks the customization store from the path: empty keeps
// customizations in memory, .db and .sqlite use SQLite, anything else a
// JSON file.
func openStore(path string) (persistence.Store, io.Closer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return persistence.NewMemoryStore(), nopCloser{}, nil
		}
	case ".db", ".sqlite", ".sqlite3":
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return persistence.NewFileStore(path), nopCloser{}, nil
}
