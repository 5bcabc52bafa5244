package service

import (
	"fmt"
	"strings"
)

// Help returns help text listing only the tools registered for the store mode
func (s *Service) Help() string {
	builder := strings.Builder{}
	builder.WriteString("Credential Manager Help\n")
	builder.WriteString("=======================\n\n")
	builder.WriteString("This MCP server manages API credentials stored in a local JSON file.\n")
	builder.WriteString(fmt.Sprintf("Current mode: %v\n\n", s.Mode()))

	builder.WriteString("Available tools:\n")
	for i, tool := range s.Tools() {
		builder.WriteString(fmt.Sprintf("%d. %v - %v\n", i+1, tool.Usage, tool.Description))
	}

	builder.WriteString(`
Credential fields:
- app: the target application name
- id: auto-generated unique identifier
- base_url: the application's base URL
- access_token: the API token or key
- user_name: optional user name, listed only when several credentials share an app
- expires: expiry date string or "never"

Examples:
- list_credentials()
- get_credential_details("credential-id-here")
- search_credentials(app_filter="git")
`)
	if !s.store.ReadOnly() {
		builder.WriteString(`- add_credential("GitHub", "https://api.github.com", "ghp_xxxx", "myuser", "2024-12-31")` + "\n")
	}
	builder.WriteString(fmt.Sprintf(`
Storage:
- Local storage only, in %v
- Several server instances can share one store file; file locks guard every read and write
`, s.store.Path()))
	if s.store.ReadOnly() {
		builder.WriteString("- Read-only mode; set CREDENTIAL_MANAGER_READ_ONLY=false or pass --writable to enable writes\n")
	}
	return builder.String()
}
