package termset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/earleycore/termset"
)

func TestSetUpDownTest(t *testing.T) {
	s := termset.NewSet(70) // spans two words
	require.True(t, s.Empty())
	s.Up(3)
	s.Up(65)
	require.True(t, s.Test(3))
	require.True(t, s.Test(65))
	require.False(t, s.Test(4))
	require.False(t, s.Empty())

	s.Down(3)
	require.False(t, s.Test(3))
}

func TestSetFillMasksTailBits(t *testing.T) {
	s := termset.NewSet(5)
	s.Fill()
	for i := 0; i < 5; i++ {
		require.True(t, s.Test(i))
	}
}

func TestSetOrReportsChange(t *testing.T) {
	a := termset.NewSet(10)
	b := termset.NewSet(10)
	b.Up(2)

	require.True(t, a.Or(b))
	require.True(t, a.Test(2))
	require.False(t, a.Or(b)) // already has bit 2, no further change
}

func TestSetIntersectsAndEqual(t *testing.T) {
	a := termset.NewSet(10)
	b := termset.NewSet(10)
	a.Up(1)
	b.Up(2)
	require.False(t, a.Intersects(b))

	b.Up(1)
	require.True(t, a.Intersects(b))

	c := termset.NewSet(10)
	c.Up(1)
	require.True(t, a.Equal(c))
	require.False(t, a.Equal(b))
}

func TestSetCopyIsIndependent(t *testing.T) {
	a := termset.NewSet(10)
	a.Up(4)
	b := a.Copy()
	b.Up(5)
	require.False(t, a.Test(5))
	require.True(t, b.Test(4))
}

func TestSetAppendTo(t *testing.T) {
	s := termset.NewSet(10)
	s.Up(1)
	s.Up(7)
	require.Equal(t, []int{1, 7}, s.AppendTo(nil))
}

func TestStoreInternsByContentNotIdentity(t *testing.T) {
	store := termset.NewStore(10)
	a := store.NewSet()
	a.Up(3)
	idA, isNewA := store.InsertOrFind(a)
	require.True(t, isNewA)

	b := store.NewSet()
	b.Up(3)
	idB, isNewB := store.InsertOrFind(b)
	require.False(t, isNewB, "equal-content set should not be treated as new")
	require.Equal(t, idA, idB)
	require.Equal(t, 1, store.Len())

	c := store.NewSet()
	c.Up(4)
	idC, isNewC := store.InsertOrFind(c)
	require.True(t, isNewC)
	require.NotEqual(t, idA, idC)
	require.Same(t, a, store.Get(idA))
}
