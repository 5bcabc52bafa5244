package server

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
)

// Client implements mcp-protocol/client.Operations for the session side, so a
// handler can call back into the client over the transport the session uses.
type Client struct {
	mux        sync.RWMutex
	implements map[string]bool
	transport.Transport
	seq int64
}

// Init records the client side methods advertised on initialize
func (c *Client) Init(ctx context.Context, capabilities *schema.ClientCapabilities) {
	if capabilities == nil {
		return
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	if capabilities.Elicitation != nil {
		c.implements[schema.MethodElicitationCreate] = true
	}
	if capabilities.Roots != nil {
		c.implements[schema.MethodRootsList] = true
	}
	if capabilities.Sampling != nil {
		c.implements[schema.MethodSamplingCreateMessage] = true
	}
}

// Implements returns true if the client advertised method
func (c *Client) Implements(method string) bool {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.implements[method]
}

// NextRequestID returns the transport sequence when it has one
func (c *Client) NextRequestID() jsonrpc.RequestId {
	if seq, ok := c.Transport.(transport.Sequencer); ok {
		return seq.NextRequestID()
	}
	return int(atomic.AddInt64(&c.seq, 1))
}

// LastRequestID returns the most recent request id
func (c *Client) LastRequestID() jsonrpc.RequestId {
	if seq, ok := c.Transport.(transport.Sequencer); ok {
		return seq.LastRequestID()
	}
	return int(atomic.LoadInt64(&c.seq))
}

func (c *Client) nextID(id uint64) uint64 {
	if id != 0 {
		return id
	}
	ret, _ := jsonrpc.AsRequestIntId(c.NextRequestID())
	return uint64(ret)
}

// ListRoots lists client roots
func (c *Client) ListRoots(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListRootsRequest]) (*schema.ListRootsResult, *jsonrpc.Error) {
	request.Id = c.nextID(request.Id)
	request.Method = schema.MethodRootsList
	return send[schema.ListRootsResult](ctx, c, schema.MethodRootsList, request.Id, request.Request.Params)
}

// CreateMessage asks the client to sample a message
func (c *Client) CreateMessage(ctx context.Context, request *jsonrpc.TypedRequest[*schema.CreateMessageRequest]) (*schema.CreateMessageResult, *jsonrpc.Error) {
	request.Id = c.nextID(request.Id)
	request.Method = schema.MethodSamplingCreateMessage
	return send[schema.CreateMessageResult](ctx, c, schema.MethodSamplingCreateMessage, request.Id, &request.Request.Params)
}

// Elicit asks the client for additional user input
func (c *Client) Elicit(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ElicitRequest]) (*schema.ElicitResult, *jsonrpc.Error) {
	request.Id = c.nextID(request.Id)
	request.Method = schema.MethodElicitationCreate
	return send[schema.ElicitResult](ctx, c, schema.MethodElicitationCreate, request.Id, request.Request.ElicitRequestParamsInline)
}

// send marshals parameters, sends the request and unmarshals the result
func send[R any](ctx context.Context, client *Client, method string, id uint64, parameters interface{}) (*R, *jsonrpc.Error) {
	request, err := jsonrpc.NewRequest(method, parameters)
	if err != nil {
		return nil, jsonrpc.NewInvalidRequest(err.Error(), nil)
	}
	request.Id = id
	response, err := client.Transport.Send(ctx, request)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), request.Params)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	var result R
	if err = json.Unmarshal(response.Result, &result); err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	return &result, nil
}

// NewClient creates a client calling back over aTransport
func NewClient(aTransport transport.Transport) *Client {
	return &Client{implements: make(map[string]bool), Transport: aTransport}
}

var _ client.Operations = &Client{}
