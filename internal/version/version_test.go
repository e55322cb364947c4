package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "wirecheck 0.1.0 (unknown, built unknown)", String("wirecheck"))
}
