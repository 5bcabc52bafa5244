// Package service exposes a credential store as MCP tools and resources.
//
// Tools:
//   - list_credentials, get_credential_details, search_credentials
//   - add_credential, update_credential, delete_credential (read-write stores only)
//
// Resources:
//   - credential://store/info, a JSON description of the backing file
//   - credential://help, help text listing the tools of the current mode
//
// Subscribing to credential://store/info starts a poller that sends
// notifications/resources/updated whenever the store file changes, including
// changes made by other processes.
package service
