package comm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingle(t *testing.T) {
	t.Parallel()

	rt := Single("loner")

	require.Equal(t, 0, rt.Rank())
	require.Equal(t, 1, rt.Size())
	require.Equal(t, []string{"loner"}, rt.Identities())

	// Barriers are immediate: a single process can never stall itself.
	require.NoError(t, rt.Barrier(context.Background()))

	payload, err := rt.Broadcast(context.Background(), 0, []byte("tick"))
	require.NoError(t, err)
	require.Equal(t, []byte("tick"), payload)

	_, err = rt.Broadcast(context.Background(), 1, nil)
	require.Error(t, err, "a group of one has no rank 1 to broadcast from")

	require.NoError(t, rt.Close(context.Background()))
}

func TestSingle_HonorsContext(t *testing.T) {
	t.Parallel()

	rt := Single("loner")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, rt.Barrier(ctx), context.Canceled)
}
