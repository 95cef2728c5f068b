package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 0))
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "成交...", Truncate("成交量分布", 2))
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "bad gateway from edge", OneLine("  bad\tgateway\n from   edge \n"))
	assert.Empty(t, OneLine(" \n "))
}
