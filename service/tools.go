package service

import (
	"context"
	"fmt"

	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/credman/store"
)

const (
	modeReadOnly  = "read-only"
	modeReadWrite = "read-write"
)

type (
	// ListInput has no arguments
	ListInput struct{}

	// CredentialInput names a credential
	CredentialInput struct {
		CredentialID string `json:"credential_id" description:"credential id returned by list_credentials or add_credential"`
	}

	// AddInput defines add_credential arguments
	AddInput struct {
		App         string  `json:"app" description:"target application name"`
		BaseURL     string  `json:"base_url" description:"application base URL"`
		AccessToken string  `json:"access_token" description:"API token or key"`
		UserName    *string `json:"user_name,omitempty" description:"optional user name"`
		Expires     *string `json:"expires,omitempty" description:"expiry date, defaults to never"`
	}

	// UpdateInput defines update_credential arguments; omitted fields are unchanged
	UpdateInput struct {
		CredentialID string `json:"credential_id" description:"credential id to update"`
		store.Fields
	}

	// SearchInput defines search_credentials arguments
	SearchInput struct {
		AppFilter  *string `json:"app_filter,omitempty" description:"case-insensitive substring of the app name"`
		UserFilter *string `json:"user_filter,omitempty" description:"case-insensitive substring of the user name"`
	}

	// ListOutput is the list_credentials result
	ListOutput struct {
		Credentials []*store.Summary `json:"credentials"`
		Count       int              `json:"count"`
		Mode        string           `json:"mode"`
	}

	// SearchFilters echoes search arguments
	SearchFilters struct {
		App  *string `json:"app"`
		User *string `json:"user"`
	}

	// SearchOutput is the search_credentials result
	SearchOutput struct {
		Credentials []*store.Summary `json:"credentials"`
		Count       int              `json:"count"`
		Filters     SearchFilters    `json:"filters"`
	}

	// ChangeOutput is the add, update and delete result
	ChangeOutput struct {
		Success      bool   `json:"success"`
		CredentialID string `json:"credential_id,omitempty"`
		Message      string `json:"message,omitempty"`
		Error        string `json:"error,omitempty"`
	}

	// ErrorOutput is a failed lookup result
	ErrorOutput struct {
		Error string `json:"error"`
	}
)

// Mode returns read-only or read-write
func (s *Service) Mode() string {
	if s.store.ReadOnly() {
		return modeReadOnly
	}
	return modeReadWrite
}

func notFound(id string) string {
	return fmt.Sprintf("Credential with ID %v not found", id)
}

func failure(err error) (interface{}, bool) {
	return &ChangeOutput{Success: false, Error: err.Error()}, true
}

func (s *Service) listCredentials(_ context.Context, _ *ListInput) (interface{}, bool) {
	summaries := s.store.List()
	return &ListOutput{Credentials: summaries, Count: len(summaries), Mode: s.Mode()}, false
}

func (s *Service) getCredentialDetails(_ context.Context, input *CredentialInput) (interface{}, bool) {
	credential, ok := s.store.Get(input.CredentialID)
	if !ok {
		return &ErrorOutput{Error: notFound(input.CredentialID)}, true
	}
	return credential, false
}

func (s *Service) searchCredentials(_ context.Context, input *SearchInput) (interface{}, bool) {
	var appFilter, userFilter string
	if input.AppFilter != nil {
		appFilter = *input.AppFilter
	}
	if input.UserFilter != nil {
		userFilter = *input.UserFilter
	}
	summaries := s.store.Search(appFilter, userFilter)
	return &SearchOutput{
		Credentials: summaries,
		Count:       len(summaries),
		Filters:     SearchFilters{App: input.AppFilter, User: input.UserFilter},
	}, false
}

func (s *Service) addCredential(_ context.Context, input *AddInput) (interface{}, bool) {
	id, err := s.store.Add(input.App, input.BaseURL, input.AccessToken, input.UserName, input.Expires)
	if err != nil {
		return failure(err)
	}
	return &ChangeOutput{Success: true, CredentialID: id, Message: fmt.Sprintf("Credential for %v added successfully", input.App)}, false
}

func (s *Service) updateCredential(_ context.Context, input *UpdateInput) (interface{}, bool) {
	if input.Fields.IsEmpty() {
		return &ChangeOutput{Success: false, Error: "no updates provided"}, true
	}
	ok, err := s.store.Update(input.CredentialID, &input.Fields)
	if err != nil {
		return failure(err)
	}
	if !ok {
		return &ChangeOutput{Success: false, Error: notFound(input.CredentialID)}, true
	}
	return &ChangeOutput{Success: true, Message: fmt.Sprintf("Credential %v updated successfully", input.CredentialID)}, false
}

func (s *Service) deleteCredential(_ context.Context, input *CredentialInput) (interface{}, bool) {
	ok, err := s.store.Delete(input.CredentialID)
	if err != nil {
		return failure(err)
	}
	if !ok {
		return &ChangeOutput{Success: false, Error: notFound(input.CredentialID)}, true
	}
	return &ChangeOutput{Success: true, Message: fmt.Sprintf("Credential %v deleted successfully", input.CredentialID)}, false
}

// Tool describes a catalog entry; write tools are only registered for read-write stores
type Tool struct {
	Name        string
	Usage       string
	Description string
	Write       bool
	register    func(i *Implementer, t *Tool) error
}

var catalog = []*Tool{
	{
		Name:        "list_credentials",
		Usage:       "list_credentials()",
		Description: "List stored credentials with id, app and, when several credentials share an app, the user name. Access tokens are never included.",
		register: func(i *Implementer, t *Tool) error {
			return protoserver.RegisterTool[*ListInput, *ListOutput](i.Registry, t.Name, t.Description, toolHandler(i, t.Name, i.service.listCredentials))
		},
	},
	{
		Name:        "get_credential_details",
		Usage:       "get_credential_details(credential_id)",
		Description: "Get full details of a credential, including its access token.",
		register: func(i *Implementer, t *Tool) error {
			return protoserver.RegisterTool[*CredentialInput, *store.Credential](i.Registry, t.Name, t.Description, toolHandler(i, t.Name, i.service.getCredentialDetails))
		},
	},
	{
		Name:        "search_credentials",
		Usage:       "search_credentials([app_filter], [user_filter])",
		Description: "Search credentials by case-insensitive app and user name substrings.",
		register: func(i *Implementer, t *Tool) error {
			return protoserver.RegisterTool[*SearchInput, *SearchOutput](i.Registry, t.Name, t.Description, toolHandler(i, t.Name, i.service.searchCredentials))
		},
	},
	{
		Name:        "add_credential",
		Usage:       "add_credential(app, base_url, access_token, [user_name], [expires])",
		Description: "Add a new credential to the store.",
		Write:       true,
		register: func(i *Implementer, t *Tool) error {
			return protoserver.RegisterTool[*AddInput, *ChangeOutput](i.Registry, t.Name, t.Description, toolHandler(i, t.Name, i.service.addCredential))
		},
	},
	{
		Name:        "update_credential",
		Usage:       "update_credential(credential_id, [fields...])",
		Description: "Update fields of an existing credential. An empty expires resets it to never.",
		Write:       true,
		register: func(i *Implementer, t *Tool) error {
			return protoserver.RegisterTool[*UpdateInput, *ChangeOutput](i.Registry, t.Name, t.Description, toolHandler(i, t.Name, i.service.updateCredential))
		},
	},
	{
		Name:        "delete_credential",
		Usage:       "delete_credential(credential_id)",
		Description: "Delete a credential from the store.",
		Write:       true,
		register: func(i *Implementer, t *Tool) error {
			return protoserver.RegisterTool[*CredentialInput, *ChangeOutput](i.Registry, t.Name, t.Description, toolHandler(i, t.Name, i.service.deleteCredential))
		},
	},
}

// Tools returns the catalog entries available in the store mode, in catalog order
func (s *Service) Tools() []*Tool {
	var ret = make([]*Tool, 0, len(catalog))
	for _, candidate := range catalog {
		if candidate.Write && s.store.ReadOnly() {
			continue
		}
		ret = append(ret, candidate)
	}
	return ret
}

func (i *Implementer) registerTools() error {
	for _, entry := range i.service.Tools() {
		if err := entry.register(i, entry); err != nil {
			return fmt.Errorf("failed to register %v: %w", entry.Name, err)
		}
	}
	return nil
}
