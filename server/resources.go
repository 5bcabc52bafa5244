package server

import (
	"context"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// ListResources handles the resources/list method
func (h *Handler) ListResources(ctx context.Context, request *jsonrpc.Request) (*schema.ListResourcesResult, *jsonrpc.Error) {
	listResourcesRequest := &schema.ListResourcesRequest{Method: schema.MethodResourcesList}
	if err := unmarshalParams(request, &listResourcesRequest.Params); err != nil {
		return nil, err
	}
	return h.handler.ListResources(ctx, &jsonrpc.TypedRequest[*schema.ListResourcesRequest]{Id: requestID(request), Method: request.Method, Request: listResourcesRequest})
}

// ReadResource handles the resources/read method
func (h *Handler) ReadResource(ctx context.Context, request *jsonrpc.Request) (*schema.ReadResourceResult, *jsonrpc.Error) {
	readRequest := &schema.ReadResourceRequest{Method: schema.MethodResourcesRead}
	if err := unmarshalParams(request, &readRequest.Params); err != nil {
		return nil, err
	}
	return h.handler.ReadResource(ctx, &jsonrpc.TypedRequest[*schema.ReadResourceRequest]{Id: requestID(request), Method: request.Method, Request: readRequest})
}

// Subscribe handles the resources/subscribe method
func (h *Handler) Subscribe(ctx context.Context, request *jsonrpc.Request) (*schema.SubscribeResult, *jsonrpc.Error) {
	subscribeRequest := &schema.SubscribeRequest{Method: schema.MethodSubscribe}
	if err := unmarshalParams(request, &subscribeRequest.Params); err != nil {
		return nil, err
	}
	return h.handler.Subscribe(ctx, &jsonrpc.TypedRequest[*schema.SubscribeRequest]{Id: requestID(request), Method: request.Method, Request: subscribeRequest})
}

// Unsubscribe handles the resources/unsubscribe method
func (h *Handler) Unsubscribe(ctx context.Context, request *jsonrpc.Request) (*schema.UnsubscribeResult, *jsonrpc.Error) {
	unsubscribeRequest := &schema.UnsubscribeRequest{Method: schema.MethodUnsubscribe}
	if err := unmarshalParams(request, &unsubscribeRequest.Params); err != nil {
		return nil, err
	}
	return h.handler.Unsubscribe(ctx, &jsonrpc.TypedRequest[*schema.UnsubscribeRequest]{Id: requestID(request), Method: request.Method, Request: unsubscribeRequest})
}
