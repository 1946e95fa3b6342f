// pkg/registry/schema.go
package registry

type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

type Template struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Recipient   string   `json:"recipient"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	SMSBody     string   `json:"smsBody,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
