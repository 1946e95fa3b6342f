// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Find returns the template for a notification type and recipient role.
func (r *TemplateRegistry) Find(notificationType, recipient string) (Template, error) {
	for _, t := range r.Templates {
		if t.Type == notificationType && t.Recipient == recipient {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("no template for type %q and recipient %q", notificationType, recipient)
}
