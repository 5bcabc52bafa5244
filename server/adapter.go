package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"
)

// Adapter calls a session handler in-process, without a transport
type Adapter struct {
	handler *Handler
	seq     int64
}

type nopNotifier struct{}

func (nopNotifier) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	return nil
}

// inProcessTransport delivers notifications to the caller; the caller serves no client side methods
type inProcessTransport struct {
	transport.Notifier
}

func (t *inProcessTransport) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	return nil, errors.New("in-process client does not serve " + request.Method)
}

// AsClient creates an in-process session; notifications go to notifier, or nowhere if nil
func (s *Server) AsClient(ctx context.Context, notifier transport.Notifier) *Adapter {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Adapter{handler: s.newHandler(ctx, &inProcessTransport{Notifier: notifier})}
}

func call[T any](ctx context.Context, a *Adapter, method string, params interface{}) (*T, error) {
	request, err := jsonrpc.NewRequest(method, params)
	if err != nil {
		return nil, err
	}
	request.Jsonrpc = jsonrpc.Version
	request.Id = int(atomic.AddInt64(&a.seq, 1))
	response := &jsonrpc.Response{}
	a.handler.Serve(ctx, request, response)
	if response.Error != nil {
		return nil, response.Error
	}
	var result T
	if err = json.Unmarshal(response.Result, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Initialize initializes the session and sends notifications/initialized
func (a *Adapter) Initialize(ctx context.Context) (*schema.InitializeResult, error) {
	result, err := call[schema.InitializeResult](ctx, a, schema.MethodInitialize, &schema.InitializeRequestParams{})
	if err != nil {
		return nil, err
	}
	a.handler.OnNotification(ctx, &jsonrpc.Notification{Method: schema.MethodNotificationInitialized})
	return result, nil
}

// ListTools lists tools
func (a *Adapter) ListTools(ctx context.Context) (*schema.ListToolsResult, error) {
	return call[schema.ListToolsResult](ctx, a, schema.MethodToolsList, map[string]interface{}{})
}

// CallTool calls a tool
func (a *Adapter) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*schema.CallToolResult, error) {
	return call[schema.CallToolResult](ctx, a, schema.MethodToolsCall, map[string]interface{}{"name": name, "arguments": arguments})
}

// ListResources lists resources
func (a *Adapter) ListResources(ctx context.Context) (*schema.ListResourcesResult, error) {
	return call[schema.ListResourcesResult](ctx, a, schema.MethodResourcesList, map[string]interface{}{})
}

// ReadResource reads a resource
func (a *Adapter) ReadResource(ctx context.Context, uri string) (*schema.ReadResourceResult, error) {
	return call[schema.ReadResourceResult](ctx, a, schema.MethodResourcesRead, map[string]interface{}{"uri": uri})
}

// Subscribe subscribes to resource updates
func (a *Adapter) Subscribe(ctx context.Context, uri string) error {
	_, err := call[schema.SubscribeResult](ctx, a, schema.MethodSubscribe, map[string]interface{}{"uri": uri})
	return err
}

// Unsubscribe cancels a resource subscription
func (a *Adapter) Unsubscribe(ctx context.Context, uri string) error {
	_, err := call[schema.UnsubscribeResult](ctx, a, schema.MethodUnsubscribe, map[string]interface{}{"uri": uri})
	return err
}

// Ping pings the session
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := call[schema.PingResult](ctx, a, schema.MethodPing, nil)
	return err
}
