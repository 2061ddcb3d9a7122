package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Hello World", want: "hello-world"},
		{in: "  Hello   World  ", want: "hello-world"},
		{in: "--already-slugged--", want: "already-slugged"},
		{in: "tabs\tand\nnewlines", want: "tabs-and-newlines"},
		{in: "MiXeD_case 42", want: "mixed_case-42"},
		{in: "Crypto & Web3!", want: "crypto-&-web3!"},
		{in: "café", want: "café"},
		{in: "日本語", want: "日本語"},
		{in: "Ünïcode Täg", want: "ünïcode-täg"},
		{in: "c++", want: "c++"},
		{in: "c#", want: "c#"},
		{in: "v1.2", want: "v1.2"},
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: " - ", want: ""},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			assert.Equal(t, test.want, NormalizeSlug(test.in))
		})
	}
}

// Requirement: distinct slugs stay distinct after normalization
func TestNormalizeSlug_KeepsDistinctSlugsApart(t *testing.T) {
	pairs := [][2]string{
		{"c++", "c#"},
		{"v1.2", "v1-2"},
		{"café", "caf"},
	}
	for _, p := range pairs {
		assert.NotEqual(t, NormalizeSlug(p[0]), NormalizeSlug(p[1]), "%q vs %q", p[0], p[1])
	}
}
