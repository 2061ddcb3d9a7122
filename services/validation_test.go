package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lborres/inkwell/core"
)

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "valid", input: core.CreateCategoryInput{Title: "T", Slug: "t"}, want: ""},
		{name: "json field names", input: core.CreateCategoryInput{}, want: "title is required; slug is required"},
		{name: "blank category id", input: core.CreatePostInput{Title: "T", Slug: "t", Categories: []string{""}}, want: "categories[0] is required"},
		{name: "bad email", input: core.SignInInput{Email: "nope", Password: "x"}, want: "email must be a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateStruct(tt.input))
		})
	}
}
