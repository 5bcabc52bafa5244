package credman

import (
	"os"
	"strings"

	"github.com/viant/credman/server"
)

const (
	// ReadOnlyEnv selects the store mode when --writable is not set
	ReadOnlyEnv = "CREDENTIAL_MANAGER_READ_ONLY"
	// StorePathEnv sets the store file location
	StorePathEnv = "CREDENTIAL_MANAGER_STORE_PATH"

	TransportStdio      = "stdio"
	TransportSSE        = "sse"
	TransportStreamable = "streamable"
)

// Options defines command line and environment configuration
type Options struct {
	File            string       `yaml:"file" json:"file" short:"f" long:"file" env:"CREDENTIAL_MANAGER_STORE_PATH" default:"credentials.json" description:"credential store file"`
	Writable        bool         `yaml:"writable" json:"writable" short:"w" long:"writable" description:"enable add, update and delete regardless of CREDENTIAL_MANAGER_READ_ONLY"`
	Transport       string       `yaml:"transport" json:"transport" short:"T" long:"transport" default:"stdio" description:"mcp transport type" choice:"stdio" choice:"sse" choice:"streamable"`
	Address         string       `yaml:"address" json:"address" short:"a" long:"address" default:"127.0.0.1:5000" description:"HTTP listen address"`
	ProtocolVersion string       `yaml:"protocol" json:"protocol" short:"p" long:"protocol" description:"mcp protocol version"`
	SSEURI          string       `yaml:"sseURI" json:"sseURI" long:"sse-uri" description:"SSE stream path, defaults to /sse"`
	SSEMessageURI   string       `yaml:"sseMessageURI" json:"sseMessageURI" long:"sse-message-uri" description:"SSE message path, defaults to /message"`
	StreamableURI   string       `yaml:"streamableURI" json:"streamableURI" long:"streamable-uri" description:"streamable HTTP path, defaults to /mcp"`
	Cors            *server.Cors `yaml:"cors" json:"cors"`
	lookupEnv       func(string) (string, bool)
}

// ReadOnly returns the store mode: --writable wins, otherwise CREDENTIAL_MANAGER_READ_ONLY
// unset or set to true, 1 or yes (any case) means read-only and any other value read-write.
func (o *Options) ReadOnly() bool {
	if o.Writable {
		return false
	}
	lookup := o.lookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(ReadOnlyEnv)
	if !ok {
		return true
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Mode returns read-only or read-write
func (o *Options) Mode() string {
	if o.ReadOnly() {
		return "read-only"
	}
	return "read-write"
}

// Init applies defaults to options populated outside of flag parsing
func (o *Options) Init() {
	if o.File == "" {
		if value, ok := os.LookupEnv(StorePathEnv); ok && value != "" {
			o.File = value
		} else {
			o.File = "credentials.json"
		}
	}
	if o.Transport == "" {
		o.Transport = TransportStdio
	}
}
