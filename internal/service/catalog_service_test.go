package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIcon(t *testing.T) {
	assert.Equal(t, "Book", NormalizeIcon("Book"))
	assert.Equal(t, "GraduationCap", NormalizeIcon("GraduationCap"))

	// Unrecognized names fall back instead of being resolved at render time
	assert.Equal(t, "Star", NormalizeIcon("NotAnIcon"))
	assert.Equal(t, "Star", NormalizeIcon(""))
	assert.Equal(t, "Star", NormalizeIcon("star"))
}
