package core

// Endpoint is a framework-agnostic route declaration. Adapters bind a
// handler to it by OperationID.
type Endpoint struct {
	Path     string
	Method   string
	Metadata EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
	// Protected endpoints require a resolved session before the handler runs.
	Protected bool
}

// Key identifies the endpoint as METHOD:PATH.
func (e *Endpoint) Key() string {
	return e.Method + ":" + e.Path
}
