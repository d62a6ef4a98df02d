package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSupported(t *testing.T) {
	for _, kind := range []string{"ht", "yh", "yjb", "xq"} {
		assert.True(t, KindSupported(kind), kind)
	}
	assert.False(t, KindSupported("gf"))
	assert.False(t, KindSupported(""))
	assert.False(t, KindSupported("YH"))
}

func TestKindNeedsUserPass(t *testing.T) {
	assert.False(t, KindNeedsUserPass("yh"))
	assert.True(t, KindNeedsUserPass("ht"))
	assert.True(t, KindNeedsUserPass("yjb"))
	assert.True(t, KindNeedsUserPass("xq"))
	assert.False(t, KindNeedsUserPass("gf"))
}
