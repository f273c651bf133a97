package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "admin123", hash)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPassword_InvalidCost(t *testing.T) {
	_, err := HashPassword("admin123", bcrypt.MaxCost+1)
	assert.Error(t, err)
}

func TestBurnPasswordCheck(t *testing.T) {
	assert.NotPanics(t, func() {
		BurnPasswordCheck("anything", bcrypt.MinCost)
		BurnPasswordCheck("", bcrypt.MinCost)
	})
}

func TestDummyHash_UsesRequestedCost(t *testing.T) {
	tests := []struct {
		name     string
		cost     int
		expected int
	}{
		{name: "minimum cost", cost: bcrypt.MinCost, expected: bcrypt.MinCost},
		{name: "configured cost", cost: bcrypt.MinCost + 2, expected: bcrypt.MinCost + 2},
		{name: "out of range falls back to default", cost: bcrypt.MaxCost + 1, expected: bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := bcrypt.Cost(dummyHash(tt.cost))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cost)
		})
	}

	assert.Equal(t, dummyHash(bcrypt.MinCost), dummyHash(bcrypt.MinCost), "hash is cached per cost")
}
