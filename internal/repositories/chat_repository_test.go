package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePairOrderIndependent(t *testing.T) {
	a1, b1 := normalizePair(7, 3)
	a2, b2 := normalizePair(3, 7)

	assert.Equal(t, int64(3), a1)
	assert.Equal(t, int64(7), b1)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestNormalizePairAlreadySorted(t *testing.T) {
	a, b := normalizePair(1, 2)
	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)
}

func TestNormalizePairEqual(t *testing.T) {
	a, b := normalizePair(5, 5)
	assert.Equal(t, int64(5), a)
	assert.Equal(t, int64(5), b)
}
