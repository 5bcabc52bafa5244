package credman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/credman/internal/logger"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestOptions_ReadOnly(t *testing.T) {
	var testCases = []struct {
		description string
		env         map[string]string
		writable    bool
		expect      bool
	}{
		{description: "unset", env: map[string]string{}, expect: true},
		{description: "true", env: map[string]string{ReadOnlyEnv: "true"}, expect: true},
		{description: "TRUE", env: map[string]string{ReadOnlyEnv: "TRUE"}, expect: true},
		{description: "1", env: map[string]string{ReadOnlyEnv: "1"}, expect: true},
		{description: "yes", env: map[string]string{ReadOnlyEnv: "Yes"}, expect: true},
		{description: "false", env: map[string]string{ReadOnlyEnv: "false"}, expect: false},
		{description: "0", env: map[string]string{ReadOnlyEnv: "0"}, expect: false},
		{description: "empty", env: map[string]string{ReadOnlyEnv: ""}, expect: false},
		{description: "writable flag wins", env: map[string]string{ReadOnlyEnv: "true"}, writable: true, expect: false},
	}
	for _, testCase := range testCases {
		options := &Options{Writable: testCase.writable, lookupEnv: env(testCase.env)}
		assert.Equal(t, testCase.expect, options.ReadOnly(), testCase.description)
	}
}

func TestOptions_Parse(t *testing.T) {
	t.Setenv(StorePathEnv, "/tmp/from-env.json")
	options := &Options{}
	_, err := flags.ParseArgs(options, []string{})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.json", options.File)
	assert.Equal(t, TransportStdio, options.Transport)
	assert.Equal(t, "127.0.0.1:5000", options.Address)
	assert.False(t, options.Writable)

	options = &Options{}
	_, err = flags.ParseArgs(options, []string{"-f", "creds.json", "-w", "-T", "streamable", "-a", ":7000"})
	require.NoError(t, err)
	assert.Equal(t, "creds.json", options.File)
	assert.True(t, options.Writable)
	assert.Equal(t, "read-write", options.Mode())
	assert.Equal(t, TransportStreamable, options.Transport)
	assert.Equal(t, ":7000", options.Address)

	options = &Options{}
	_, err = flags.ParseArgs(options, []string{"--sse-uri", "/events", "--sse-message-uri", "/events/message", "--streamable-uri", "/rpc"})
	require.NoError(t, err)
	assert.Equal(t, "/events", options.SSEURI)
	assert.Equal(t, "/events/message", options.SSEMessageURI)
	assert.Equal(t, "/rpc", options.StreamableURI)

	_, err = flags.ParseArgs(&Options{}, []string{"-T", "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	options := &Options{File: filepath.Join(t.TempDir(), "creds.json"), Writable: true}
	log := logger.Nop()
	srv, err := NewService(options, log)
	require.NoError(t, err)
	assert.Equal(t, "read-write", srv.Mode())

	mcpServer, err := NewServer(srv, options, log)
	require.NoError(t, err)
	ctx := context.Background()
	client := mcpServer.AsClient(ctx, nil)
	result, err := client.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, Name, result.ServerInfo.Name)
	assert.Equal(t, Version, result.ServerInfo.Version)

	tools, err := client.ListTools(ctx)
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 6)

	options.Transport = TransportStreamable
	options.StreamableURI = "/rpc"
	mcpServer, err = NewServer(srv, options, log)
	require.NoError(t, err)
	recorder := httptest.NewRecorder()
	mcpServer.HTTP(ctx, "").Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
	assert.Equal(t, "/rpc", recorder.Header().Get("Location"))

	_, err = NewService(nil, log)
	assert.Error(t, err)
	_, err = NewServer(nil, options, log)
	assert.Error(t, err)
}
