package slots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// runMediumContract checks the behaviour every slot medium shares: an absent
// key reads as (nil, nil), Set replaces the whole value and Delete is
// idempotent.
func runMediumContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key", func(t *testing.T) {
		v, err := newRepo(t).Get(ctx, "absent")
		require.NoError(t, err)
		require.Nil(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "provas", []byte(`[{"id":"1"}]`)))

		v, err := r.Get(ctx, "provas")
		require.NoError(t, err)
		require.Equal(t, []byte(`[{"id":"1"}]`), v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "k", []byte("old value")))
		require.NoError(t, r.Set(ctx, "k", []byte("new")))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("new"), v)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Delete(ctx, "never-set"))

		require.NoError(t, r.Set(ctx, "k", []byte{0x01}))
		require.NoError(t, r.Delete(ctx, "k"))
		require.NoError(t, r.Delete(ctx, "k"))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		require.Nil(t, v)
	})

	t.Run("keys are independent", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "provas", []byte("a")))
		require.NoError(t, r.Set(ctx, "provas/uid-1", []byte("b")))
		require.NoError(t, r.Delete(ctx, "provas"))

		v, err := r.Get(ctx, "provas/uid-1")
		require.NoError(t, err)
		require.Equal(t, []byte("b"), v)
	})
}
