package server

import (
	"context"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/credman/internal/conv"
)

// activeContext tracks a cancellable in-flight request
type activeContext struct {
	context.Context
	context.CancelFunc
}

// newActiveContext attaches the request progress token, if any, to ctx
func newActiveContext(ctx context.Context, cancel context.CancelFunc, request *jsonrpc.Request) (*activeContext, context.Context) {
	if token, ok := progressToken(request); ok {
		ctx = context.WithValue(ctx, schema.TokenProgressContextKey, token)
	}
	return &activeContext{Context: ctx, CancelFunc: cancel}, ctx
}

func progressToken(request *jsonrpc.Request) (schema.ProgressToken, bool) {
	if len(request.Params) == 0 {
		return 0, false
	}
	params := struct {
		Meta map[string]interface{} `json:"_meta,omitempty"`
	}{}
	if err := json.Unmarshal(request.Params, &params); err != nil {
		return 0, false
	}
	value, ok := params.Meta["progressToken"]
	if !ok {
		return 0, false
	}
	return schema.ProgressToken(conv.AsInt(value)), true
}
