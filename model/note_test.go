package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyOnPrefersAfterTouch(t *testing.T) {
	n := Note{
		Offset:     1000,
		Hammers:    []Sample{{Time: 5, Value: 300}},
		AfterTouch: []Sample{{Time: 20, Value: 100}, {Time: 5000, Value: 10}},
	}

	assert := assert.New(t)
	assert.Equal(int64(1020), n.KeyOn())
	assert.Equal(int64(6000), n.KeyOff())
	assert.Equal(int64(4980), n.Duration())
}

func TestKeyOnFallsBackToHammerThenOffset(t *testing.T) {
	assert := assert.New(t)

	n := Note{Offset: 1000, Hammers: []Sample{{Time: 5, Value: 300}}}
	assert.Equal(int64(1005), n.KeyOn())
	assert.Equal(int64(1005), n.KeyOff())

	bare := Note{Offset: 1000}
	assert.Equal(int64(1000), bare.KeyOn())
	assert.Equal(int64(1000), bare.KeyOff())
}

func TestFirstHammerTime(t *testing.T) {
	assert := assert.New(t)

	n := Note{Offset: 1000, Hammers: []Sample{{Time: 5, Value: 300}}}
	ht, ok := n.FirstHammerTime()
	assert.True(ok)
	assert.Equal(int64(1005), ht)

	_, ok = (&Note{Offset: 1000}).FirstHammerTime()
	assert.False(ok)
}
