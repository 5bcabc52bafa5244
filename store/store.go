package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/viant/afs"
	"github.com/viant/credman/internal/logger"
)

// DefaultPath is the store location used when Config.Path is empty
const DefaultPath = "credentials.json"

type (
	// Config defines store construction parameters
	Config struct {
		Path     string          `yaml:"path" json:"path"`
		ReadOnly bool            `yaml:"readOnly" json:"readOnly"`
		Logger   *zerolog.Logger `yaml:"-" json:"-"`
	}

	// Store represents a JSON file backed credential store
	Store struct {
		mux         sync.Mutex
		path        string
		readOnly    bool
		credentials map[string]*Credential
		modTime     time.Time
		observed    bool
		logger      *zerolog.Logger
		fs          afs.Service
		newID       func() string
	}

	// Info describes the backing file of a store
	Info struct {
		StorePath        string  `json:"store_path"`
		TotalCredentials int     `json:"total_credentials"`
		StoreExists      bool    `json:"store_exists"`
		ReadOnlyMode     bool    `json:"read_only_mode"`
		LastModified     *string `json:"last_modified"`
	}
)

// Path returns the backing file location
func (s *Store) Path() string {
	return s.path
}

// ReadOnly returns true if the store rejects mutations
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Add stores a new credential and returns its id
func (s *Store) Add(app, baseURL, accessToken string, userName, expires *string) (string, error) {
	if s.readOnly {
		return "", ErrReadOnly
	}
	switch {
	case app == "":
		return "", fmt.Errorf("%w: app is required", ErrInvalidArgument)
	case baseURL == "":
		return "", fmt.Errorf("%w: base_url is required", ErrInvalidArgument)
	case accessToken == "":
		return "", fmt.Errorf("%w: access_token is required", ErrInvalidArgument)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.refresh(false)
	credential := &Credential{
		App:         app,
		ID:          s.nextID(),
		BaseURL:     baseURL,
		AccessToken: accessToken,
		Expires:     expiresOrDefault(expires),
	}
	if userName != nil {
		name := *userName
		credential.UserName = &name
	}
	s.credentials[credential.ID] = credential
	if err := s.save(); err != nil {
		return "", err
	}
	return credential.ID, nil
}

// Get returns a credential by id, always reading the latest file content first
func (s *Store) Get(id string) (*Credential, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.refresh(true)
	credential, ok := s.credentials[id]
	if !ok {
		return nil, false
	}
	return credential.clone(), true
}

// List returns credential summaries sorted by app then id. A user name is
// only included when more than one credential shares the same app.
func (s *Store) List() []*Summary {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.refresh(false)
	return s.summaries()
}

// Search filters List output by case-insensitive app and user name substrings.
// Blank filters are ignored; a user filter excludes summaries without a user name.
func (s *Store) Search(appFilter, userFilter string) []*Summary {
	appFilter = strings.ToLower(appFilter)
	userFilter = strings.ToLower(strings.TrimSpace(userFilter))
	var ret = make([]*Summary, 0)
	for _, summary := range s.List() {
		if appFilter != "" && !strings.Contains(strings.ToLower(summary.App), appFilter) {
			continue
		}
		if userFilter != "" {
			if summary.UserName == nil || !strings.Contains(strings.ToLower(*summary.UserName), userFilter) {
				continue
			}
		}
		ret = append(ret, summary)
	}
	return ret
}

// Update applies fields to an existing credential; it returns false if id is unknown
func (s *Store) Update(id string, fields *Fields) (bool, error) {
	if s.readOnly {
		return false, ErrReadOnly
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.refresh(false)
	current, ok := s.credentials[id]
	if !ok {
		return false, nil
	}
	updated, err := current.apply(fields)
	if err != nil {
		return false, err
	}
	s.credentials[id] = updated
	if err = s.save(); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a credential; it returns false if id is unknown
func (s *Store) Delete(id string) (bool, error) {
	if s.readOnly {
		return false, ErrReadOnly
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.refresh(false)
	if _, ok := s.credentials[id]; !ok {
		return false, nil
	}
	delete(s.credentials, id)
	if err := s.save(); err != nil {
		return false, err
	}
	return true, nil
}

// ModTime returns the backing file modification time
func (s *Store) ModTime() (time.Time, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Info returns the backing file description
func (s *Store) Info(ctx context.Context) (*Info, error) {
	s.mux.Lock()
	s.refresh(false)
	total := len(s.credentials)
	s.mux.Unlock()

	location, err := filepath.Abs(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path %v: %w", s.path, err)
	}
	ret := &Info{StorePath: location, TotalCredentials: total, ReadOnlyMode: s.readOnly}
	if ret.StoreExists, err = s.fs.Exists(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to check store %v: %w", location, err)
	}
	if !ret.StoreExists {
		return ret, nil
	}
	object, err := s.fs.Object(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to stat store %v: %w", location, err)
	}
	modified := object.ModTime().Format(time.RFC3339)
	ret.LastModified = &modified
	return ret, nil
}

func (s *Store) summaries() []*Summary {
	appCount := make(map[string]int, len(s.credentials))
	for _, credential := range s.credentials {
		appCount[credential.App]++
	}
	ret := make([]*Summary, 0, len(s.credentials))
	for _, credential := range s.credentials {
		summary := &Summary{ID: credential.ID, App: credential.App}
		if appCount[credential.App] > 1 && credential.HasUserName() {
			name := *credential.UserName
			summary.UserName = &name
		}
		ret = append(ret, summary)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].App != ret[j].App {
			return ret[i].App < ret[j].App
		}
		return ret[i].ID < ret[j].ID
	})
	return ret
}

func (s *Store) nextID() string {
	for {
		id := s.newID()
		if _, ok := s.credentials[id]; !ok {
			return id
		}
	}
}

// stale returns true if the backing file is missing or its mtime differs from the last observed one
func (s *Store) stale() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return true
	}
	return !s.observed || !info.ModTime().Equal(s.modTime)
}

func (s *Store) refresh(force bool) {
	if force || s.stale() {
		s.load()
	}
}

// load replaces in-memory state with the file content; any failure leaves an empty set
func (s *Store) load() {
	credentials, misplaced, modTime, err := s.read()
	if err != nil {
		s.credentials = map[string]*Credential{}
		s.observed = false
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to load credential store, serving an empty set")
		return
	}
	if len(misplaced) > 0 {
		s.logger.Warn().Strs("keys", misplaced).Str("path", s.path).Msg("credentials stored under a key other than their id")
	}
	s.credentials = credentials
	s.modTime = modTime
	s.observed = true
}

func (s *Store) read() (map[string]*Credential, []string, time.Time, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	defer f.Close()
	if err = lockFile(f, false); err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	defer func() { _ = unlockFile(f) }()
	info, err := f.Stat()
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	credentials, misplaced, err := decodeCredentials(data)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return credentials, misplaced, info.ModTime(), nil
}

// save rewrites the whole file; the in-memory mutation is kept even if it fails
func (s *Store) save() error {
	if s.readOnly {
		return ErrReadOnly
	}
	data, err := json.MarshalIndent(s.credentials, "", "  ")
	if err == nil {
		var modTime time.Time
		if modTime, err = s.write(data); err == nil {
			s.modTime = modTime
			s.observed = true
			return nil
		}
	}
	s.observed = false
	s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to save credential store, memory and disk diverge until the next load")
	return fmt.Errorf("%w: %v", ErrIO, err)
}

func (s *Store) write(data []byte) (time.Time, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return time.Time{}, err
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return time.Time{}, err
	}
	modTime, err := writeLocked(f, data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return modTime, err
}

// writeLocked truncates and writes f under an exclusive lock; the file is not
// truncated before the lock is held so readers never see a partial rewrite.
func writeLocked(f *os.File, data []byte) (time.Time, error) {
	if err := lockFile(f, true); err != nil {
		return time.Time{}, fmt.Errorf("failed to acquire exclusive lock: %w", err)
	}
	defer func() { _ = unlockFile(f) }()
	if err := f.Truncate(0); err != nil {
		return time.Time{}, err
	}
	if _, err := f.Write(data); err != nil {
		return time.Time{}, err
	}
	info, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// bootstrap creates the parent directory and an empty store file if absent
func (s *Store) bootstrap() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory %v: %w", dir, err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("failed to create store file %v: %w", s.path, err)
	}
	_, err = writeLocked(f, []byte("{}"))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to initialize store file %v: %w", s.path, err)
	}
	return nil
}

// Open creates a store, bootstrapping the backing file if needed, and loads it
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	ret := &Store{
		path:        config.Path,
		readOnly:    config.ReadOnly,
		logger:      config.Logger,
		credentials: map[string]*Credential{},
		fs:          afs.New(),
		newID:       uuid.NewString,
	}
	if ret.path == "" {
		ret.path = DefaultPath
	}
	if ret.logger == nil {
		ret.logger = logger.Get()
	}
	if err := ret.bootstrap(); err != nil {
		return nil, err
	}
	ret.load()
	return ret, nil
}
