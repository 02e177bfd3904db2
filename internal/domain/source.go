package domain

// Endpoint is one URL that must be queried for a source.
// A non-empty Body turns the request into a JSON POST.
type Endpoint struct {
	URL  string `yaml:"url" json:"url"`
	Body string `yaml:"body,omitempty" json:"body,omitempty"`
}

// ContestSource describes one provider and the endpoints to query for it,
// in the order their records should be concatenated.
type ContestSource struct {
	Name      SourceName `yaml:"name" json:"name"`
	Endpoints []Endpoint `yaml:"endpoints" json:"endpoints"`
}

// IsPost reports whether the endpoint is queried with a JSON POST.
func (e Endpoint) IsPost() bool {
	return e.Body != ""
}
