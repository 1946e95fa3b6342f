// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"elab-credentialing/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Template ID (e.g., doc-status-applicant)")
	notifType := addCmd.String("type", "", "Notification type (e.g., document_status_changed)")
	recipient := addCmd.String("recipient", "", "Recipient role (applicant, consultant, admin)")
	displayName := addCmd.String("displayName", "", "Display Name")
	description := addCmd.String("description", "", "Description")
	subject := addCmd.String("subject", "", "Email subject template")
	body := addCmd.String("body", "", "Email body template")
	smsBody := addCmd.String("smsBody", "", "SMS body template (optional)")
	addCmd.StringVar(&registryPath, "path", "configs/notification-templates.json", "Path to registry file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Template ID to update")
	field := updateCmd.String("field", "", "Field to update (subject, body, smsBody, displayName, description)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", "configs/notification-templates.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/notification-templates.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *notifType == "" || *recipient == "" || *subject == "" || *body == "" {
			fmt.Println("Error: id, type, recipient, subject, and body are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		template := registry.Template{
			ID:          *idAdd,
			Type:        *notifType,
			Recipient:   *recipient,
			DisplayName: *displayName,
			Description: *description,
			Subject:     *subject,
			Body:        *body,
			SMSBody:     *smsBody,
			Tags:        []string{},
		}
		err := addTemplate(&template)
		if err != nil {
			fmt.Printf("Error adding template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added template: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err := updateTemplate(*idUpdate, *field, *value)
		if err != nil {
			fmt.Printf("Error updating template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated template %s, field %s\n", *idUpdate, *field)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err := validateRegistry()
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addTemplate(template *registry.Template) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.TemplateRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Templates:   []registry.Template{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	// One template per type+recipient pair
	for _, existing := range reg.Templates {
		if existing.ID == template.ID {
			return fmt.Errorf("template with ID %s already exists", template.ID)
		}
		if existing.Type == template.Type && existing.Recipient == template.Recipient {
			return fmt.Errorf("template for type %s and recipient %s already exists (%s)",
				template.Type, template.Recipient, existing.ID)
		}
	}

	reg.Templates = append(reg.Templates, *template)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateTemplate(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Templates {
		if reg.Templates[i].ID == id {
			found = true
			switch field {
			case "subject":
				reg.Templates[i].Subject = value
			case "body":
				reg.Templates[i].Body = value
			case "smsBody":
				reg.Templates[i].SMSBody = value
			case "displayName":
				reg.Templates[i].DisplayName = value
			case "description":
				reg.Templates[i].Description = value
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("template with ID %s not found", id)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Templates) == 0 {
		return fmt.Errorf("registry contains no templates")
	}

	ids := make(map[string]bool)
	pairs := make(map[string]bool)
	for _, template := range reg.Templates {
		if template.ID == "" {
			return fmt.Errorf("template missing required field: ID")
		}
		if ids[template.ID] {
			return fmt.Errorf("duplicate template ID: %s", template.ID)
		}
		ids[template.ID] = true

		pair := template.Type + "/" + template.Recipient
		if pairs[pair] {
			return fmt.Errorf("duplicate template for %s", pair)
		}
		pairs[pair] = true

		if template.Type == "" {
			return fmt.Errorf("template %s missing required field: Type", template.ID)
		}
		if template.Recipient == "" {
			return fmt.Errorf("template %s missing required field: Recipient", template.ID)
		}
		if template.Subject == "" {
			return fmt.Errorf("template %s missing required field: Subject", template.ID)
		}
		if template.Body == "" {
			return fmt.Errorf("template %s missing required field: Body", template.ID)
		}
	}

	fmt.Printf("Registry validation passed. Found %d templates.\n", len(reg.Templates))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.TemplateRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new notification template to the registry
  update   Update an existing template's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -id doc-status-applicant -type document_status_changed -recipient applicant -subject "Document update" -body "Your {{category}} document is now {{newStatus}}."
  registry-updater update -id doc-status-applicant -field smsBody -value "{{category}}: {{newStatus}}"
  registry-updater validate -path configs/notification-templates.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
