package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"banquet-planner/internal/beo"
)

const reportPrefix = "BEO_Report_"

// ReportStore provides file-based storage for rendered banquet event orders.
type ReportStore struct {
	basePath string
}

// NewReportStore creates a new ReportStore and ensures the base directory exists.
func NewReportStore(basePath string) (*ReportStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ReportStore{basePath: basePath}, nil
}

// sanitizeEventName makes the event name safe for filenames.
func sanitizeEventName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(name)
}

func (s *ReportStore) path(eventName, ext string) string {
	return filepath.Join(s.basePath, reportPrefix+sanitizeEventName(eventName)+ext)
}

// Save writes the text report for an order and a JSON copy of the order next
// to it, replacing any earlier report for the same event. It returns the path
// of the text report.
func (s *ReportStore) Save(order *beo.Order, text string) (string, error) {
	data, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal order: %w", err)
	}
	if err := os.WriteFile(s.path(order.Event.Name, ".json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write order file: %w", err)
	}

	textPath := s.path(order.Event.Name, ".txt")
	if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return textPath, nil
}

// Load retrieves the text report saved for an event.
func (s *ReportStore) Load(eventName string) (string, error) {
	data, err := os.ReadFile(s.path(eventName, ".txt"))
	if err != nil {
		return "", fmt.Errorf("failed to read report file: %w", err)
	}
	return string(data), nil
}

// LoadOrder retrieves the order saved for an event.
func (s *ReportStore) LoadOrder(eventName string) (*beo.Order, error) {
	data, err := os.ReadFile(s.path(eventName, ".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read order file: %w", err)
	}

	var order beo.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &order, nil
}

// Exists checks if a report has been saved for an event.
func (s *ReportStore) Exists(eventName string) bool {
	_, err := os.Stat(s.path(eventName, ".txt"))
	return !os.IsNotExist(err)
}

// List returns the file names of all saved text reports, sorted.
func (s *ReportStore) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, reportPrefix+"*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob report files: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}
