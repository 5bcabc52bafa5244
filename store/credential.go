package store

import (
	"encoding/json"
	"fmt"
	"sort"
)

// NeverExpires is the expires value of a credential without an expiry date
const NeverExpires = "never"

type (
	// Credential represents a stored secret with the metadata needed to use it
	Credential struct {
		App         string  `json:"app"`
		ID          string  `json:"id"`
		BaseURL     string  `json:"base_url"`
		AccessToken string  `json:"access_token"`
		UserName    *string `json:"user_name"`
		Expires     string  `json:"expires"`
	}

	// Summary is the token-free view of a credential returned by List
	Summary struct {
		ID       string  `json:"id"`
		App      string  `json:"app"`
		UserName *string `json:"user_name,omitempty"`
	}

	// Fields holds an update; nil fields are left unchanged
	Fields struct {
		App         *string `json:"app,omitempty" description:"new application name"`
		BaseURL     *string `json:"base_url,omitempty" description:"new base URL"`
		AccessToken *string `json:"access_token,omitempty" description:"new access token"`
		UserName    *string `json:"user_name,omitempty" description:"new user name"`
		Expires     *string `json:"expires,omitempty" description:"new expiry date or never"`
	}

	// record mirrors the on-disk shape with presence tracking for required fields
	record struct {
		App         *string `json:"app"`
		ID          *string `json:"id"`
		BaseURL     *string `json:"base_url"`
		AccessToken *string `json:"access_token"`
		UserName    *string `json:"user_name"`
		Expires     *string `json:"expires"`
	}
)

// IsEmpty returns true if no field is set
func (f *Fields) IsEmpty() bool {
	return f == nil || (f.App == nil && f.BaseURL == nil && f.AccessToken == nil && f.UserName == nil && f.Expires == nil)
}

// HasUserName returns true if the credential carries a non-empty user name
func (c *Credential) HasUserName() bool {
	return c.UserName != nil && *c.UserName != ""
}

func (c *Credential) clone() *Credential {
	ret := *c
	if c.UserName != nil {
		userName := *c.UserName
		ret.UserName = &userName
	}
	return &ret
}

// apply validates and applies fields to a copy of the credential
func (c *Credential) apply(fields *Fields) (*Credential, error) {
	ret := c.clone()
	if fields == nil {
		return ret, nil
	}
	if fields.App != nil {
		if *fields.App == "" {
			return nil, fmt.Errorf("%w: app is empty", ErrInvalidArgument)
		}
		ret.App = *fields.App
	}
	if fields.BaseURL != nil {
		if *fields.BaseURL == "" {
			return nil, fmt.Errorf("%w: base_url is empty", ErrInvalidArgument)
		}
		ret.BaseURL = *fields.BaseURL
	}
	if fields.AccessToken != nil {
		if *fields.AccessToken == "" {
			return nil, fmt.Errorf("%w: access_token is empty", ErrInvalidArgument)
		}
		ret.AccessToken = *fields.AccessToken
	}
	if fields.UserName != nil {
		userName := *fields.UserName
		ret.UserName = &userName
	}
	if fields.Expires != nil {
		ret.Expires = expiresOrDefault(fields.Expires)
	}
	return ret, nil
}

func expiresOrDefault(expires *string) string {
	if expires == nil || *expires == "" {
		return NeverExpires
	}
	return *expires
}

// decodeCredentials parses the backing file content. An entry stored under a
// key other than its id is moved to its id unless that id is taken; each such
// entry is reported in misplaced.
func decodeCredentials(data []byte) (credentials map[string]*Credential, misplaced []string, err error) {
	var raw map[string]json.RawMessage
	if err = json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	if raw == nil { // literal null
		return nil, nil, fmt.Errorf("expected a JSON object")
	}
	credentials = make(map[string]*Credential, len(raw))
	var keys = make([]string, 0, len(raw))
	for key, value := range raw {
		rec := &record{}
		if err = json.Unmarshal(value, rec); err != nil {
			return nil, nil, fmt.Errorf("credential %v: %w", key, err)
		}
		credential, recErr := rec.credential()
		if recErr != nil {
			return nil, nil, fmt.Errorf("credential %v: %w", key, recErr)
		}
		if credential.ID == key {
			credentials[key] = credential
			continue
		}
		keys = append(keys, key)
		credentials[key] = credential
	}
	sort.Strings(keys)
	for _, key := range keys {
		credential := credentials[key]
		if _, taken := credentials[credential.ID]; !taken {
			delete(credentials, key)
			credentials[credential.ID] = credential
		}
		misplaced = append(misplaced, key)
	}
	return credentials, misplaced, nil
}

func (r *record) credential() (*Credential, error) {
	switch {
	case r.App == nil:
		return nil, fmt.Errorf("missing app")
	case r.ID == nil:
		return nil, fmt.Errorf("missing id")
	case r.BaseURL == nil:
		return nil, fmt.Errorf("missing base_url")
	case r.AccessToken == nil:
		return nil, fmt.Errorf("missing access_token")
	}
	return &Credential{
		App:         *r.App,
		ID:          *r.ID,
		BaseURL:     *r.BaseURL,
		AccessToken: *r.AccessToken,
		UserName:    r.UserName,
		Expires:     expiresOrDefault(r.Expires),
	}, nil
}
