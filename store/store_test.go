package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/credman/internal/logger"
)

func strPtr(s string) *string { return &s }

func openTest(t *testing.T, path string, readOnly bool) *Store {
	t.Helper()
	s, err := Open(&Config{Path: path, ReadOnly: readOnly, Logger: logger.Nop()})
	require.NoError(t, err)
	return s
}

// bump moves the file mtime forward so that other instances see a change
// even when two writes land in the same filesystem timestamp tick.
func bump(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	next := info.ModTime().Add(time.Second)
	require.NoError(t, os.Chtimes(path, next, next))
}

func TestOpen_Bootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "creds.json")
	s := openTest(t, path, true)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
	assert.Empty(t, s.List())
	assert.Equal(t, path, s.Path())
	assert.True(t, s.ReadOnly())

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	content := `{"c1":{"app":"github","id":"c1","base_url":"https://api.github.com","access_token":"t","user_name":null,"expires":"never"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	s := openTest(t, path, false)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Len(t, s.List(), 1)
}

func TestStore_AddGet(t *testing.T) {
	var testCases = []struct {
		description string
		userName    *string
		expires     *string
		expectUser  *string
		expectExp   string
	}{
		{description: "defaults", expectExp: NeverExpires},
		{description: "with user and expiry", userName: strPtr("alice"), expires: strPtr("2026-12-31"), expectUser: strPtr("alice"), expectExp: "2026-12-31"},
		{description: "empty expires", expires: strPtr(""), expectExp: NeverExpires},
		{description: "empty user name", userName: strPtr(""), expectUser: strPtr(""), expectExp: NeverExpires},
	}
	for _, testCase := range testCases {
		s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
		id, err := s.Add("github", "https://api.github.com", "ghp_abc", testCase.userName, testCase.expires)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.NotEmpty(t, id, testCase.description)
		credential, ok := s.Get(id)
		if !assert.True(t, ok, testCase.description) {
			continue
		}
		assert.Equal(t, id, credential.ID, testCase.description)
		assert.Equal(t, "github", credential.App, testCase.description)
		assert.Equal(t, "https://api.github.com", credential.BaseURL, testCase.description)
		assert.Equal(t, "ghp_abc", credential.AccessToken, testCase.description)
		assert.Equal(t, testCase.expectUser, credential.UserName, testCase.description)
		assert.Equal(t, testCase.expectExp, credential.Expires, testCase.description)
	}
}

func TestStore_AddValidation(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	_, err := s.Add("", "https://x", "t", nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = s.Add("app", "", "t", nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = s.Add("app", "https://x", "", nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Empty(t, s.List())
}

func TestStore_GetMissing(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	credential, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, credential)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	id, err := s.Add("github", "https://api.github.com", "t", strPtr("alice"), nil)
	require.NoError(t, err)
	credential, _ := s.Get(id)
	credential.AccessToken = "changed"
	*credential.UserName = "bob"
	again, _ := s.Get(id)
	assert.Equal(t, "t", again.AccessToken)
	assert.Equal(t, "alice", *again.UserName)
}

func TestStore_IDCollision(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	ids := []string{"x", "x", "y"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	first, err := s.Add("a", "https://a", "t", nil, nil)
	require.NoError(t, err)
	second, err := s.Add("b", "https://b", "t", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", first)
	assert.Equal(t, "y", second)
}

func TestStore_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	writer := openTest(t, path, false)
	id, err := writer.Add("github", "https://api.github.com", "t", nil, nil)
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	reader := openTest(t, path, true)
	_, err = reader.Add("gitlab", "https://gitlab.com", "t", nil, nil)
	assert.Equal(t, ErrReadOnly, err)
	_, err = reader.Add("", "", "", nil, nil)
	assert.Equal(t, ErrReadOnly, err, "read-only check comes first")
	updated, err := reader.Update(id, &Fields{App: strPtr("x")})
	assert.Equal(t, ErrReadOnly, err)
	assert.False(t, updated)
	deleted, err := reader.Delete(id)
	assert.Equal(t, ErrReadOnly, err)
	assert.False(t, deleted)
	assert.Equal(t, "cannot modify credentials in read-only mode", err.Error())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	credential, ok := reader.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "github", credential.App)
}

func TestStore_MultiInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	a := openTest(t, path, false)
	b := openTest(t, path, false)

	id, err := a.Add("github", "https://api.github.com", "t", nil, nil)
	require.NoError(t, err)
	credential, ok := b.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "github", credential.App)

	other, err := b.Add("gitlab", "https://gitlab.com", "t2", nil, nil)
	require.NoError(t, err)
	bump(t, path)
	summaries := a.List()
	if assert.Len(t, summaries, 2) {
		assert.Equal(t, "github", summaries[0].App)
		assert.Equal(t, "gitlab", summaries[1].App)
		assert.Equal(t, other, summaries[1].ID)
	}

	deleted, err := a.Delete(id)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, ok = b.Get(id)
	assert.False(t, ok)
	bump(t, path)
	assert.Len(t, b.List(), 1)
}

func TestStore_ListUserNameDisambiguation(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	_, err := s.Add("github", "https://api.github.com", "t1", strPtr("alice"), nil)
	require.NoError(t, err)
	_, err = s.Add("github", "https://api.github.com", "t2", strPtr("bob"), nil)
	require.NoError(t, err)
	_, err = s.Add("github", "https://api.github.com", "t3", nil, nil)
	require.NoError(t, err)
	_, err = s.Add("gitlab", "https://gitlab.com", "t4", strPtr("carol"), nil)
	require.NoError(t, err)

	var names = map[string]int{}
	for _, summary := range s.List() {
		switch summary.App {
		case "gitlab":
			assert.Nil(t, summary.UserName, "single credential app hides user name")
		case "github":
			if summary.UserName != nil {
				names[*summary.UserName]++
			}
		}
	}
	assert.Equal(t, map[string]int{"alice": 1, "bob": 1}, names)
}

func TestStore_ListSorted(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	for _, app := range []string{"zeta", "alpha", "mid", "alpha"} {
		_, err := s.Add(app, "https://"+app, "t", nil, nil)
		require.NoError(t, err)
	}
	summaries := s.List()
	require.Len(t, summaries, 4)
	for i := 1; i < len(summaries); i++ {
		prev, cur := summaries[i-1], summaries[i]
		assert.True(t, prev.App < cur.App || (prev.App == cur.App && prev.ID < cur.ID))
	}
}

func TestStore_Search(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	_, _ = s.Add("GitHub", "https://api.github.com", "t1", strPtr("Alice"), nil)
	_, _ = s.Add("GitHub", "https://api.github.com", "t2", strPtr("bob"), nil)
	_, _ = s.Add("gitlab", "https://gitlab.com", "t3", strPtr("alice"), nil)
	_, _ = s.Add("slack", "https://slack.com", "t4", nil, nil)

	var testCases = []struct {
		description string
		app         string
		user        string
		expect      int
	}{
		{description: "no filters", expect: 4},
		{description: "app substring case insensitive", app: "GIT", expect: 3},
		{description: "app exact", app: "slack", expect: 1},
		{description: "user filter", user: "ALI", expect: 1},
		{description: "user filter skips hidden user names", user: "alice", expect: 1},
		{description: "both filters", app: "hub", user: "bob", expect: 1},
		{description: "blank user filter ignored", user: "   ", expect: 4},
		{description: "trimmed user filter", user: " bob ", expect: 1},
		{description: "no match", app: "jira", expect: 0},
	}
	for _, testCase := range testCases {
		actual := s.Search(testCase.app, testCase.user)
		assert.NotNil(t, actual, testCase.description)
		assert.Len(t, actual, testCase.expect, testCase.description)
	}
}

func TestStore_Update(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	id, err := s.Add("github", "https://api.github.com", "t", strPtr("alice"), strPtr("2026-01-01"))
	require.NoError(t, err)

	ok, err := s.Update(id, &Fields{AccessToken: strPtr("new"), Expires: strPtr("")})
	require.NoError(t, err)
	assert.True(t, ok)
	credential, _ := s.Get(id)
	assert.Equal(t, "new", credential.AccessToken)
	assert.Equal(t, NeverExpires, credential.Expires)
	assert.Equal(t, "alice", *credential.UserName)
	assert.Equal(t, "github", credential.App)

	ok, err = s.Update(id, &Fields{UserName: strPtr("")})
	require.NoError(t, err)
	assert.True(t, ok)
	credential, _ = s.Get(id)
	require.NotNil(t, credential.UserName)
	assert.Equal(t, "", *credential.UserName)

	ok, err = s.Update(id, &Fields{App: strPtr("")})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.False(t, ok)
	credential, _ = s.Get(id)
	assert.Equal(t, "github", credential.App)

	ok, err = s.Update("missing", &Fields{App: strPtr("x")})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DeleteMissing(t *testing.T) {
	s := openTest(t, filepath.Join(t.TempDir(), "creds.json"), false)
	ok, err := s.Delete("missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CorruptFile(t *testing.T) {
	var testCases = []struct {
		description string
		content     string
	}{
		{description: "not json", content: "not json"},
		{description: "array", content: "[]"},
		{description: "null", content: "null"},
		{description: "missing token", content: `{"a":{"app":"x","id":"a","base_url":"u"}}`},
		{description: "truncated", content: `{"a":{"app":"x"`},
	}
	for _, testCase := range testCases {
		path := filepath.Join(t.TempDir(), "creds.json")
		require.NoError(t, os.WriteFile(path, []byte(testCase.content), 0o600))
		buf := &bytes.Buffer{}
		log := zerolog.New(buf)
		s, err := Open(&Config{Path: path, Logger: &log})
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Empty(t, s.List(), testCase.description)
		assert.Contains(t, buf.String(), "failed to load credential store", testCase.description)
		assert.Contains(t, buf.String(), `"level":"warn"`, testCase.description)

		_, err = s.Add("app", "https://app", "t", nil, nil)
		assert.NoError(t, err, testCase.description)
		reopened := openTest(t, path, true)
		assert.Len(t, reopened.List(), 1, testCase.description)
	}
}

func TestStore_NullExpires(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	content := `{"a":{"app":"x","id":"a","base_url":"u","access_token":"t","expires":null},"b":{"app":"y","id":"b","base_url":"u","access_token":"t"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	s := openTest(t, path, true)
	for _, id := range []string{"a", "b"} {
		credential, ok := s.Get(id)
		if assert.True(t, ok, id) {
			assert.Equal(t, NeverExpires, credential.Expires, id)
		}
	}
}

func TestStore_SaveFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	buf := &bytes.Buffer{}
	log := zerolog.New(buf)
	s, err := Open(&Config{Path: path, Logger: &log})
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o700))
	_, err = s.Add("app", "https://app", "t", nil, nil)
	assert.True(t, errors.Is(err, ErrIO))
	assert.Contains(t, buf.String(), "failed to save credential store")
}

func TestStore_ExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	s := openTest(t, path, true)
	assert.Empty(t, s.List())
	content := `{"a":{"app":"x","id":"a","base_url":"u","access_token":"t"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	bump(t, path)
	assert.Len(t, s.List(), 1)
}

func TestStore_MisplacedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	content := `{
  "a": {"app": "github", "id": "a", "base_url": "https://api.github.com", "access_token": "ta"},
  "b": {"app": "slack", "id": "B", "base_url": "https://slack.com", "access_token": "tb"},
  "c": {"app": "jira", "id": "a", "base_url": "https://jira.example.com", "access_token": "tc"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	buf := &bytes.Buffer{}
	log := zerolog.New(buf)
	s, err := Open(&Config{Path: path, Logger: &log})
	require.NoError(t, err)
	assert.Len(t, s.List(), 3)
	assert.Contains(t, buf.String(), "credentials stored under a key other than their id")
	assert.NotContains(t, buf.String(), "failed to load credential store")

	credential, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "ta", credential.AccessToken)
	credential, ok = s.Get("B")
	require.True(t, ok)
	assert.Equal(t, "tb", credential.AccessToken)
	credential, ok = s.Get("c")
	require.True(t, ok, "an id already taken keeps its file key")
	assert.Equal(t, "tc", credential.AccessToken)

	_, err = s.Add("gitlab", "https://gitlab.com", "td", nil, nil)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Len(t, onDisk, 4)
	assert.Equal(t, "ta", onDisk["a"]["access_token"])
	assert.Equal(t, "tb", onDisk["B"]["access_token"])
	assert.Equal(t, "tc", onDisk["c"]["access_token"])
}

// TestStore_ConcurrentInstances runs writers and a reader on separate Store
// instances sharing one file. Writers reload, mutate and save under separate
// lock scopes, so some adds may be overwritten by another writer (last writer
// wins); what must never happen is a reader seeing a partially written file.
func TestStore_ConcurrentInstances(t *testing.T) {
	const writers, adds = 4, 10
	path := filepath.Join(t.TempDir(), "creds.json")
	openTest(t, path, false)

	buf := &bytes.Buffer{}
	log := zerolog.New(zerolog.SyncWriter(buf))
	open := func(readOnly bool) *Store {
		s, err := Open(&Config{Path: path, ReadOnly: readOnly, Logger: &log})
		require.NoError(t, err)
		return s
	}
	var stores []*Store
	for i := 0; i < writers; i++ {
		stores = append(stores, open(false))
	}
	reader := open(true)

	done := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-done:
				return
			default:
				reader.List()
				reader.Get("missing")
			}
		}
	}()

	var wg sync.WaitGroup
	errs := make(chan error, writers*adds)
	for i, s := range stores {
		wg.Add(1)
		go func(i int, s *Store) {
			defer wg.Done()
			for j := 0; j < adds; j++ {
				if _, err := s.Add(fmt.Sprintf("app-%d", i), "https://example.com", fmt.Sprintf("t-%d-%d", i, j), nil, nil); err != nil {
					errs <- err
				}
			}
		}(i, s)
	}
	wg.Wait()
	close(done)
	<-readerDone
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.NotContains(t, buf.String(), "failed to load credential store")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	credentials, misplaced, err := decodeCredentials(data)
	require.NoError(t, err)
	assert.Empty(t, misplaced)
	assert.NotEmpty(t, credentials)
	assert.LessOrEqual(t, len(credentials), writers*adds)
}

func TestStore_Info(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	s := openTest(t, path, false)
	_, err := s.Add("github", "https://api.github.com", "t", nil, nil)
	require.NoError(t, err)

	info, err := s.Info(context.Background())
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(info.StorePath))
	assert.Equal(t, 1, info.TotalCredentials)
	assert.True(t, info.StoreExists)
	assert.False(t, info.ReadOnlyMode)
	assert.NotNil(t, info.LastModified)

	modTime, ok := s.ModTime()
	assert.True(t, ok)
	assert.False(t, modTime.IsZero())

	require.NoError(t, os.Remove(path))
	info, err = s.Info(context.Background())
	require.NoError(t, err)
	assert.False(t, info.StoreExists)
	assert.Nil(t, info.LastModified)
	assert.Equal(t, 0, info.TotalCredentials)
}
