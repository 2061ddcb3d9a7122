package services

import (
	"testing"

	"github.com/lborres/inkwell/core"
)

// Requirement: BaseEndpoints declares every API route exactly once.
func TestBaseEndpoints(t *testing.T) {
	want := map[string]string{
		"POST:/users/login":      OpLogin,
		"POST:/users/logout":     OpLogout,
		"GET:/users/me":          OpMe,
		"POST:/users":            OpSignUp,
		"GET:/users":             OpListUsers,
		"GET:/posts":             OpListPosts,
		"GET:/posts/:id":         OpGetPost,
		"POST:/posts":            OpCreatePost,
		"DELETE:/posts/:id":      OpDeletePost,
		"GET:/categories":        OpListCategories,
		"GET:/categories/:id":    OpGetCategory,
		"POST:/categories":       OpCreateCategory,
		"DELETE:/categories/:id": OpDeleteCategory,
		"GET:/init":              OpInit,
		"GET:/seed":              OpSeed,
	}

	endpoints := BaseEndpoints()
	if len(endpoints) != len(want) {
		t.Fatalf("BaseEndpoints() returned %d endpoints, want %d", len(endpoints), len(want))
	}

	for _, ep := range endpoints {
		op, ok := want[ep.Key()]
		if !ok {
			t.Errorf("unexpected endpoint %s", ep.Key())
			continue
		}
		if ep.Metadata.OperationID != op {
			t.Errorf("%s: OperationID = %q, want %q", ep.Key(), ep.Metadata.OperationID, op)
		}
		if ep.Metadata.Description == "" {
			t.Errorf("%s: missing description", ep.Key())
		}
	}
}

// Requirement: only the session-reading user endpoints are resolved by the
// adapter; public reads and action-authorized writes are not.
func TestBaseEndpoints_Protected(t *testing.T) {
	protected := map[string]bool{OpMe: true, OpListUsers: true}

	for _, ep := range BaseEndpoints() {
		if got := ep.Metadata.Protected; got != protected[ep.Metadata.OperationID] {
			t.Errorf("%s: Protected = %v, want %v", ep.Metadata.OperationID, got, !got)
		}
	}
}

func TestBaseEndpoints_OperationIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, ep := range BaseEndpoints() {
		if seen[ep.Metadata.OperationID] {
			t.Errorf("duplicate OperationID %q", ep.Metadata.OperationID)
		}
		seen[ep.Metadata.OperationID] = true
	}
}

func TestEndpointRegistry_RegistersBaseEndpoints(t *testing.T) {
	registry := NewEndpointRegistry()

	if got, want := len(registry.Endpoints()), len(BaseEndpoints()); got != want {
		t.Fatalf("Endpoints() returned %d endpoints, want %d", got, want)
	}
}

func TestEndpointRegistry_EndpointsAreOrdered(t *testing.T) {
	eps := NewEndpointRegistry().Endpoints()

	for i := 1; i < len(eps); i++ {
		prev, cur := eps[i-1], eps[i]
		if prev.Path > cur.Path || (prev.Path == cur.Path && prev.Method > cur.Method) {
			t.Errorf("endpoints out of order: %s before %s", prev.Key(), cur.Key())
		}
	}
}

// Requirement: EndpointRegistry rejects duplicate METHOD:PATH registrations.
func TestEndpointRegistry_DetectsConflicts(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []core.Endpoint
		wantErr   bool
	}{
		{
			name:      "rejects duplicate POST /posts",
			endpoints: []core.Endpoint{{Path: "/posts", Method: "POST"}},
			wantErr:   true,
		},
		{
			name:      "rejects duplicate GET /seed",
			endpoints: []core.Endpoint{{Path: "/seed", Method: "GET"}},
			wantErr:   true,
		},
		{
			name:      "rejects duplicates within one batch",
			endpoints: []core.Endpoint{{Path: "/tags", Method: "GET"}, {Path: "/tags", Method: "GET"}},
			wantErr:   true,
		},
		{
			name:      "allows different path same method",
			endpoints: []core.Endpoint{{Path: "/tags", Method: "POST"}},
			wantErr:   false,
		},
		{
			name:      "allows same path different method",
			endpoints: []core.Endpoint{{Path: "/posts/:id", Method: "PATCH"}},
			wantErr:   false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			registry := NewEndpointRegistry()
			before := len(registry.Endpoints())

			// Act
			err := registry.Register(test.endpoints)

			// Assert
			if (err != nil) != test.wantErr {
				t.Fatalf("Register() error = %v, wantErr %v", err, test.wantErr)
			}
			after := len(registry.Endpoints())
			if test.wantErr && after != before {
				t.Errorf("failed Register() added %d endpoints", after-before)
			}
			if !test.wantErr && after != before+len(test.endpoints) {
				t.Errorf("Endpoints() = %d, want %d", after, before+len(test.endpoints))
			}
		})
	}
}
