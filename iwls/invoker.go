package iwls

import (
	"context"
	"fmt"
	"log/slog"
)

var ErrEmptyOperation = fmt.Errorf("operation name is empty")

// Invoker is the passthrough for IWLS operations that have no typed wrapper.
// Registered operations resolve through their Endpoint; any other name is
// requested as a top-level resource and left for the service to reject.
type Invoker struct {
	client *Client
	logger *slog.Logger
}

func NewInvoker(client *Client, logger *slog.Logger) *Invoker {
	return &Invoker{
		client: client,
		logger: logger,
	}
}

func (i *Invoker) IsReady() bool {
	if i.logger == nil {
		fmt.Println("Logger of Invoker is not initialized")
		return false
	}

	if i.client == nil {
		i.logger.Error("IWLS client is not set for Invoker")
		return false
	}

	return i.client.IsReady()
}

// Invoke returns the decoded JSON document of the operation unmodified.
func (i *Invoker) Invoke(ctx context.Context, operation string, params map[string]any) (any, error) {
	if !i.IsReady() {
		return nil, ErrClientNotReady
	}

	endpoint, ok := LookupEndpoint(operation)
	if !ok {
		name := NormalizeOperation(operation)
		if name == "" {
			return nil, ErrEmptyOperation
		}

		i.logger.Warn("Operation is not registered, passing it through", "operation", operation, "path", name)
		endpoint = Endpoint{Name: name, Path: name}
	}

	path, query := endpoint.Build(params)
	i.logger.Debug("Invoking IWLS operation", "operation", endpoint.Name, "path", path)

	document, err := i.client.GetRaw(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", endpoint.Name, err)
	}

	return document, nil
}
