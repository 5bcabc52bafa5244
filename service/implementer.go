package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
)

// Implementer serves one MCP session
type Implementer struct {
	*protoserver.DefaultHandler
	service *Service
	ctx     context.Context

	mutex       sync.Mutex
	stopWatch   context.CancelFunc
	lastModTime time.Time
	lastExists  bool
}

// Initialize advertises tools and subscribable resources
func (i *Implementer) Initialize(ctx context.Context, init *schema.InitializeRequestParams, result *schema.InitializeResult) {
	i.DefaultHandler.Initialize(ctx, init, result)
	subscribe := true
	result.Capabilities.Resources = &schema.ServerCapabilitiesResources{Subscribe: &subscribe}
}

// Implements returns true if the method is supported by this implementer
func (i *Implementer) Implements(method string) bool {
	switch method {
	case schema.MethodSubscribe, schema.MethodUnsubscribe:
		return true
	}
	return i.DefaultHandler.Implements(method)
}

// toolHandler adapts a service operation to a typed tool handler. Absent
// arguments decode to the zero input; operation failures are reported as
// error results, not JSON-RPC errors.
func toolHandler[I any](i *Implementer, name string, handle func(ctx context.Context, input *I) (interface{}, bool)) func(ctx context.Context, input *I) (*schema.CallToolResult, *jsonrpc.Error) {
	return func(ctx context.Context, input *I) (*schema.CallToolResult, *jsonrpc.Error) {
		if input == nil {
			input = new(I)
		}
		output, isError := handle(ctx, input)
		i.service.logger.Debug().Str("tool", name).Bool("isError", isError).Msg("tool called")
		if isError && i.Logger != nil {
			_ = i.Logger.Warning(ctx, fmt.Sprintf("%v failed", name))
		}
		return toolResult(output, isError)
	}
}

// toolResult returns output as JSON text content and as structured content
func toolResult(output interface{}, isError bool) (*schema.CallToolResult, *jsonrpc.Error) {
	data, err := json.Marshal(output)
	if err != nil {
		return nil, jsonrpc.NewInternalError(fmt.Sprintf("failed to marshal result: %v", err), nil)
	}
	structured := map[string]interface{}{}
	if err = json.Unmarshal(data, &structured); err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	result := &schema.CallToolResult{
		StructuredContent: structured,
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: string(data)},
		},
	}
	if isError {
		result.IsError = &isError
	}
	return result, nil
}
