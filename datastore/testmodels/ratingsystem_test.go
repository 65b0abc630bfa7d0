package testmodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerValidate(t *testing.T) {
	assert.NoError(t, Player{ID: "p1", Email: "ada@example.com"}.Validate())
	assert.Error(t, Player{Email: "ada@example.com"}.Validate())
	assert.Error(t, Player{ID: "p1", Email: "not-an-email"}.Validate())
}
