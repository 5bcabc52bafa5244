package service

import (
	"context"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/credman/store"
)

const (
	// InfoURI identifies the store info resource
	InfoURI = "credential://store/info"
	// HelpURI identifies the help resource
	HelpURI = "credential://help"

	jsonMimeType = "application/json"
	textMimeType = "text/plain"
)

func (i *Implementer) registerResources() {
	jsonType, textType := jsonMimeType, textMimeType
	infoDescription := "Store file location, credential count, mode and last modification time"
	helpDescription := "Usage of the tools available in the current mode"
	protoserver.RegisterResource[*store.Info](i.Registry, schema.Resource{
		Name:        "store_info",
		Uri:         InfoURI,
		Description: &infoDescription,
		MimeType:    &jsonType,
	}, i.readInfo)
	protoserver.RegisterResource[string](i.Registry, schema.Resource{
		Name:        "help",
		Uri:         HelpURI,
		Description: &helpDescription,
		MimeType:    &textType,
	}, i.readHelp)
}

func (i *Implementer) readInfo(ctx context.Context, uri string) (*schema.ReadResourceResult, *jsonrpc.Error) {
	info, err := i.service.store.Info(ctx)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	return textResource(uri, jsonMimeType, string(data)), nil
}

func (i *Implementer) readHelp(_ context.Context, uri string) (*schema.ReadResourceResult, *jsonrpc.Error) {
	return textResource(uri, textMimeType, i.service.Help()), nil
}

func textResource(uri, mimeType, text string) *schema.ReadResourceResult {
	result := &schema.ReadResourceResult{}
	result.Contents = append(result.Contents, schema.ReadResourceResultContentsElem{
		MimeType: &mimeType,
		Uri:      uri,
		Text:     text,
	})
	return result
}

// ReadResource reads a registered resource; unknown URIs are reported as resource not found
func (i *Implementer) ReadResource(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ReadResourceRequest]) (*schema.ReadResourceResult, *jsonrpc.Error) {
	if _, ok := i.ResourceRegistry.Get(request.Request.Params.Uri); !ok {
		return nil, schema.NewResourceNotFound(request.Request.Params.Uri)
	}
	return i.DefaultHandler.ReadResource(ctx, request)
}

// Subscribe subscribes to store info updates
func (i *Implementer) Subscribe(ctx context.Context, request *jsonrpc.TypedRequest[*schema.SubscribeRequest]) (*schema.SubscribeResult, *jsonrpc.Error) {
	if request.Request.Params.Uri != InfoURI {
		return nil, schema.NewResourceNotFound(request.Request.Params.Uri)
	}
	result, err := i.DefaultHandler.Subscribe(ctx, request)
	if err != nil {
		return nil, err
	}
	i.ensureWatcher()
	return result, nil
}

// Unsubscribe stops store info updates
func (i *Implementer) Unsubscribe(ctx context.Context, request *jsonrpc.TypedRequest[*schema.UnsubscribeRequest]) (*schema.UnsubscribeResult, *jsonrpc.Error) {
	result, err := i.DefaultHandler.Unsubscribe(ctx, request)
	if err != nil {
		return nil, err
	}
	if !i.subscribed(InfoURI) {
		i.stopWatcher()
	}
	return result, nil
}
