package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requirement: an unexpanded reference encodes as its bare id and an
// expanded one as the nested record carrying the same id.
func TestRef_MarshalJSON(t *testing.T) {
	bare := RefTo[User]("u1")
	expanded := Ref[User]{ID: "u1", Doc: &User{ID: "u1", Email: "a@b.com"}}

	bareJSON, err := json.Marshal(bare)
	require.NoError(t, err)
	assert.JSONEq(t, `"u1"`, string(bareJSON))

	expandedJSON, err := json.Marshal(expanded)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(expandedJSON, &decoded))
	assert.Equal(t, "u1", decoded["id"])
	assert.Equal(t, "a@b.com", decoded["email"])
}

func TestRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantID       string
		wantExpanded bool
	}{
		{name: "bare id", input: `"c1"`, wantID: "c1", wantExpanded: false},
		{name: "nested object", input: `{"id":"c1","title":"Tech","slug":"tech","owner":"u1"}`, wantID: "c1", wantExpanded: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var ref Ref[Category]

			err := json.Unmarshal([]byte(test.input), &ref)

			require.NoError(t, err)
			assert.Equal(t, test.wantID, ref.ID)
			assert.Equal(t, test.wantExpanded, ref.Expanded())
			if test.wantExpanded {
				assert.Equal(t, "u1", ref.Doc.Owner.ID)
			}
		})
	}
}

// Requirement: the create-post input carries no owner, so a client-supplied
// owner is dropped while decoding.
func TestCreatePostInput_IgnoresOwner(t *testing.T) {
	body := `{"title":"t","slug":"s","owner":"someone-else","categories":["c1"]}`

	var in CreatePostInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "someone-else")
	assert.Equal(t, []string{"c1"}, in.Categories)
}

func TestPost_CategoryIDs(t *testing.T) {
	p := &Post{Categories: []Ref[Category]{RefTo[Category]("a"), {ID: "b", Doc: &Category{ID: "b"}}}}

	assert.Equal(t, []string{"a", "b"}, p.CategoryIDs())
}
