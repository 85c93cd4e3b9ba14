package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskName(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"김":        "*",
		"김철":       "김*",
		"홍길동":      "홍*동",
		"남궁민수":     "남**수",
		" Alice ": "A***e",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskName(in), in)
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ho**@example.com", MaskEmail("hong@example.com"))
	assert.Equal(t, "a*@example.com", MaskEmail("ab@example.com"))
	assert.Equal(t, "*", MaskEmail("x"))
}
