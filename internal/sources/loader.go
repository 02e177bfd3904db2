package sources

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
)

// envReference matches ${VAR} placeholders. Bare $name is left alone because
// GraphQL bodies use it for query variables.
var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Loader handles loading and parsing of the sources.yaml file
type Loader struct {
	filePath string
}

// NewLoader creates a new sources loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the sources file.
//
// Example:
//
//	- name: codeforces
//	  endpoints:
//	    - url: https://codeforces.com/api/contest.list?gym=false
func (l *Loader) Load() ([]domain.ContestSource, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	data = expandEnvReferences(data)

	var config []domain.ContestSource
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse sources yaml: %w", err)
	}

	return validate(config)
}

// validate drops endpoints without a URL and rejects configs that end up
// with no usable source.
func validate(config []domain.ContestSource) ([]domain.ContestSource, error) {
	out := make([]domain.ContestSource, 0, len(config))
	for _, src := range config {
		name := domain.SourceName(strings.ToLower(strings.TrimSpace(string(src.Name))))
		if name == "" {
			continue
		}

		endpoints := make([]domain.Endpoint, 0, len(src.Endpoints))
		for _, ep := range src.Endpoints {
			if strings.TrimSpace(ep.URL) == "" {
				continue
			}
			endpoints = append(endpoints, domain.Endpoint{URL: strings.TrimSpace(ep.URL), Body: ep.Body})
		}
		if len(endpoints) == 0 {
			continue
		}

		out = append(out, domain.ContestSource{Name: name, Endpoints: endpoints})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid sources found in config")
	}
	return out, nil
}

// expandEnvReferences replaces ${VAR} with the variable's value (empty when unset).
func expandEnvReferences(data []byte) []byte {
	return envReference.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envReference.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}
