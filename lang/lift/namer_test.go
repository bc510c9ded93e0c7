package lift

import (
	"testing"

	"github.com/dolthub/swiss"
	"github.com/stretchr/testify/assert"
)

func TestLetterName(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "a"},
		{1, "b"},
		{25, "z"},
		{26, "aa"},
		{27, "ab"},
		{51, "az"},
		{52, "ba"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, letterName(c.n))
	}
}

func TestNamerSkipsClaimed(t *testing.T) {
	seen := swiss.NewMap[string, struct{}](uint32(4))
	n := newNamer(seen)
	n.claim("a")
	got := n.fresh()
	assert.Equal(t, "b", got)
}

func TestNamerSharedAcrossInstances(t *testing.T) {
	seen := swiss.NewMap[string, struct{}](uint32(4))
	n1 := newNamer(seen)
	n2 := newNamer(seen)
	a := n1.fresh()
	b := n2.fresh()
	assert.NotEqual(t, a, b)
}
