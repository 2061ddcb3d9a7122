package services

import (
	"fmt"
	"sort"

	"github.com/lborres/inkwell/core"
)

// Operation ids. Adapters bind their handlers to these.
const (
	OpLogin          = "login"
	OpLogout         = "logout"
	OpMe             = "me"
	OpSignUp         = "signUp"
	OpListUsers      = "listUsers"
	OpListPosts      = "listPosts"
	OpGetPost        = "getPost"
	OpCreatePost     = "createPost"
	OpDeletePost     = "deletePost"
	OpListCategories = "listCategories"
	OpGetCategory    = "getCategory"
	OpCreateCategory = "createCategory"
	OpDeleteCategory = "deleteCategory"
	OpInit           = "init"
	OpSeed           = "seed"
)

// BaseEndpoints returns the framework-agnostic route table, relative to the
// API base path.
//
// Protected endpoints have the session resolved by the adapter before the
// handler runs. Content writes are not marked: the action layer resolves the
// actor itself and reports its own error.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{Path: "/users/login", Method: "POST", Metadata: core.EndpointMetadata{
			OperationID: OpLogin,
			Description: "Sign in with email and password and set the session cookie",
		}},
		{Path: "/users/logout", Method: "POST", Metadata: core.EndpointMetadata{
			OperationID: OpLogout,
			Description: "Clear the session cookie and revoke the session",
		}},
		{Path: "/users/me", Method: "GET", Metadata: core.EndpointMetadata{
			OperationID: OpMe,
			Description: "Current user and session",
			Protected:   true,
		}},
		{Path: "/users", Method: "POST", Metadata: core.EndpointMetadata{
			OperationID: OpSignUp,
			Description: "Register a user with email and password",
		}},
		{Path: "/users", Method: "GET", Metadata: core.EndpointMetadata{
			OperationID: OpListUsers,
			Description: "List users",
			Protected:   true,
		}},

		{Path: "/posts", Method: "GET", Metadata: core.EndpointMetadata{OperationID: OpListPosts, Description: "List posts"}},
		{Path: "/posts/:id", Method: "GET", Metadata: core.EndpointMetadata{OperationID: OpGetPost, Description: "Get a post"}},
		{Path: "/posts", Method: "POST", Metadata: core.EndpointMetadata{OperationID: OpCreatePost, Description: "Create a post owned by the caller"}},
		{Path: "/posts/:id", Method: "DELETE", Metadata: core.EndpointMetadata{OperationID: OpDeletePost, Description: "Delete a post"}},

		{Path: "/categories", Method: "GET", Metadata: core.EndpointMetadata{OperationID: OpListCategories, Description: "List categories"}},
		{Path: "/categories/:id", Method: "GET", Metadata: core.EndpointMetadata{OperationID: OpGetCategory, Description: "Get a category"}},
		{Path: "/categories", Method: "POST", Metadata: core.EndpointMetadata{OperationID: OpCreateCategory, Description: "Create a category owned by the caller"}},
		{Path: "/categories/:id", Method: "DELETE", Metadata: core.EndpointMetadata{OperationID: OpDeleteCategory, Description: "Delete a category"}},

		{Path: "/init", Method: "GET", Metadata: core.EndpointMetadata{OperationID: OpInit, Description: "Create the demo user and starter categories"}},
		{Path: "/seed", Method: "GET", Metadata: core.EndpointMetadata{OperationID: OpSeed, Description: "Create the demo user and sample categories"}},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
}

// NewEndpointRegistry creates a registry with every base endpoint
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	base := BaseEndpoints()
	for i := range base {
		// base endpoints are unique; covered by tests
		_ = reg.register(&base[i])
	}

	return reg
}

func (r *EndpointRegistry) register(ep *core.Endpoint) error {
	if _, exists := r.endpoints[ep.Key()]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}
	r.endpoints[ep.Key()] = ep
	return nil
}

// Register adds extra endpoints. If any of them conflicts with a registered
// endpoint or with another in the same batch, none are added.
func (r *EndpointRegistry) Register(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := endpoints[i].Key()
		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		r.endpoints[ep.Key()] = &ep
	}
	return nil
}

// Endpoints returns every registered endpoint ordered by path then method.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
