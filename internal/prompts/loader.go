// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
//
// The section labels inside the templates (SIGNAL, REFLECTIONS, Qn, NARRATIVE,
// SUBJECT, BODY) are what the extract package scans for. Change them together.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Prompt files and keys.
const (
	InsightFile    = "insight.json"
	NewsletterFile = "newsletter.json"

	KeyAutomatedInsight    = "automated-insight"
	KeySynthesizeNarrative = "synthesize-narrative"
	KeyAutomatedNewsletter = "automated-newsletter"
	KeyCurateNewsletter    = "curate-newsletter"
)

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "insight.json").
// Returns an error if the file or key is not found.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// This is a simple template system for prompt customization.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// loadFile loads and caches a prompt file.
func loadFile(filename string) (map[string]string, error) {
	// Check cache first
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	// Load from embedded filesystem
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	// Cache the result
	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// required lists the keys callers look up in each prompt file.
var required = map[string][]string{
	InsightFile:    {KeyAutomatedInsight, KeySynthesizeNarrative},
	NewsletterFile: {KeyAutomatedNewsletter, KeyCurateNewsletter},
}

// Verify checks that every prompt the generation paths use is present, so a
// broken prompt file fails at startup instead of on the first request.
func Verify() error {
	for filename, keys := range required {
		for _, key := range keys {
			if _, err := Get(filename, key); err != nil {
				return err
			}
		}
	}
	return nil
}
