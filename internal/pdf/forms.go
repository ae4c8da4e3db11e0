package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormsDirectory lists the locally stored form documents so the agent
// can offer forms that were already downloaded.
type FormsDirectory struct {
	validator *Validator
}

// NewFormsDirectory creates a forms-directory lister
func NewFormsDirectory(maxFileSize int64) *FormsDirectory {
	return &FormsDirectory{validator: NewValidator(maxFileSize)}
}

// List walks the directory and returns every valid form document whose
// filename matches the query. An empty query matches everything. Hidden
// directories are skipped; unreadable or oversized files are ignored.
func (d *FormsDirectory) List(directory, query string) ([]DirectoryEntry, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))

	var entries []DirectoryEntry
	err = filepath.WalkDir(absDirectory, func(path string, de os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // continue past unreadable entries
		}
		if de.IsDir() {
			if strings.HasPrefix(de.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(de.Name()), ".pdf") {
			return nil
		}

		info, err := de.Info()
		if err != nil {
			return nil //nolint:nilerr // continue past unreadable entries
		}
		if info.Size() == 0 {
			return nil
		}
		if err := d.validator.ValidateFile(path); err != nil {
			return nil //nolint:nilerr // skip invalid files, keep walking
		}
		if !matchesQuery(de.Name(), query) {
			return nil
		}

		entries = append(entries, DirectoryEntry{
			Name: de.Name(),
			Path: path,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return entries, nil
}

// matchesQuery matches the query against the filename: substring first,
// then word-wise so "income return" matches "income_tax_return_2024.pdf".
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.TrimSuffix(strings.ToLower(filename), ".pdf")
	if strings.Contains(name, query) {
		return true
	}

	nameWords := splitWords(name)
	for _, qw := range splitWords(query) {
		found := false
		for _, w := range nameWords {
			if strings.Contains(w, qw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
