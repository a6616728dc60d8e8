package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(RoleAdmin))
	assert.False(t, IsAdmin(RoleUser))
	assert.False(t, IsAdmin(""))
}
