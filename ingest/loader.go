package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/camden-git/personagen/repository"
)

// Summary aggregates the outcome of one ingestion run
type Summary struct {
	FilesProcessed int      `json:"files_processed"`
	Inserted       int      `json:"inserted"`
	Skipped        int      `json:"skipped"`
	Failed         int      `json:"failed"`
	FileErrors     []string `json:"file_errors,omitempty"`
}

// Loader scans a data directory tree and stores the flattened administrator
// profiles it finds
type Loader struct {
	Repo repository.ProfileRepositoryInterface
}

// NewLoader creates a new Loader backed by the given repository
func NewLoader(repo repository.ProfileRepositoryInterface) *Loader {
	return &Loader{Repo: repo}
}

// Run walks root's immediate subdirectories (categories) and the JSON files
// inside them (subcategories, named after the file). Each file must hold a JSON
// array of entries; a file that fails to decode is recorded as a file error and
// skipped while its siblings continue. Within a file, a malformed entry counts
// as failed without blocking the rest.
func (l *Loader) Run(root string) (Summary, error) {
	var summary Summary

	categories, err := os.ReadDir(root)
	if err != nil {
		return summary, fmt.Errorf("failed to read data directory %s: %w", root, err)
	}

	for _, categoryEntry := range categories {
		if !categoryEntry.IsDir() {
			continue
		}
		category := categoryEntry.Name()
		categoryPath := filepath.Join(root, category)

		files, err := os.ReadDir(categoryPath)
		if err != nil {
			summary.FileErrors = append(summary.FileErrors, fmt.Sprintf("%s: %v", categoryPath, err))
			continue
		}

		for _, fileEntry := range files {
			if fileEntry.IsDir() || !strings.EqualFold(filepath.Ext(fileEntry.Name()), ".json") {
				continue
			}

			filePath := filepath.Join(categoryPath, fileEntry.Name())
			subcategory := strings.TrimSuffix(fileEntry.Name(), filepath.Ext(fileEntry.Name()))

			if err := l.loadFile(filePath, category, subcategory, &summary); err != nil {
				log.Printf("ingest: skipping file %s: %v", filePath, err)
				summary.FileErrors = append(summary.FileErrors, fmt.Sprintf("%s: %v", filePath, err))
				continue
			}
			summary.FilesProcessed++
		}
	}

	return summary, nil
}

// loadFile ingests one category/subcategory JSON file
func (l *Loader) loadFile(filePath, category, subcategory string, summary *Summary) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse JSON list: %w", err)
	}

	for _, entry := range entries {
		profile, err := Flatten(entry, filePath, category, subcategory)
		if err != nil {
			summary.Failed++
			continue
		}

		created, err := l.Repo.Upsert(profile)
		if err != nil {
			log.Printf("ingest: failed to store admin %d from %s: %v", profile.AdminID, filePath, err)
			summary.Failed++
			continue
		}
		if created {
			summary.Inserted++
		} else {
			summary.Skipped++
		}
	}

	return nil
}
