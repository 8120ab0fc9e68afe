package inmemorycomm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/wallgridgo/internal/comm"
)

func TestNewGroup_RanksFollowGivenOrder(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b", "c"})
	require.Len(t, members, 3)

	for i, m := range members {
		require.Equal(t, i, m.Rank())
		require.Equal(t, 3, m.Size())
		require.Equal(t, []string{"a", "b", "c"}, m.Identities())
	}
}

func TestBarrier_Lockstep(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b", "c"})
	const rounds = 50

	var wg sync.WaitGroup
	errs := make([]error, len(members))
	for i, m := range members {
		wg.Add(1)
		go func(i int, m *Runtime) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if err := m.Barrier(context.Background()); err != nil {
					errs[i] = err
					return
				}
			}
		}(i, m)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "member %d failed", i)
	}
}

func TestBarrier_TimesOutWhenAMemberIsAbsent(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Only member 0 arrives; member 1 never calls Barrier.
	err := members[0].Barrier(ctx)
	require.ErrorIs(t, err, comm.ErrBarrierTimeout)
}

func TestBarrier_TimeoutDoesNotCorruptTheNextRound(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	err := members[0].Barrier(ctx)
	cancel()
	require.ErrorIs(t, err, comm.ErrBarrierTimeout)

	// A timed-out arrival must be withdrawn: the next full round still
	// needs both members, and then completes.
	done := make(chan error, 2)
	go func() { done <- members[0].Barrier(context.Background()) }()
	go func() { done <- members[1].Barrier(context.Background()) }()
	for i := 0; i < 2; i++ {
		require.NoError(t, <-done)
	}
}

func TestBarrier_CloseReleasesWaitersWithPeerLost(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b", "c"})

	done := make(chan error, 2)
	go func() { done <- members[0].Barrier(context.Background()) }()
	go func() { done <- members[1].Barrier(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, members[2].Close(context.Background()))

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, <-done, comm.ErrPeerLost)
	}

	// Later calls on the dead hub fail the same way.
	require.ErrorIs(t, members[0].Barrier(context.Background()), comm.ErrPeerLost)
}

func TestBroadcast_DistributesRootPayload(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b", "c"})

	var wg sync.WaitGroup
	payloads := make([][]byte, len(members))
	errs := make([]error, len(members))
	for i, m := range members {
		wg.Add(1)
		go func(i int, m *Runtime) {
			defer wg.Done()
			var in []byte
			if m.Rank() == 1 {
				in = []byte("from-root")
			}
			payloads[i], errs[i] = m.Broadcast(context.Background(), 1, in)
		}(i, m)
	}
	wg.Wait()

	for i := range members {
		require.NoError(t, errs[i])
		require.Equal(t, []byte("from-root"), payloads[i])
	}
}

func TestBroadcast_SuccessiveRoundsStayOrdered(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b"})
	const rounds = 20

	var wg sync.WaitGroup
	got := make([][]string, len(members))
	for i, m := range members {
		wg.Add(1)
		go func(i int, m *Runtime) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				var in []byte
				if m.Rank() == 0 {
					in = []byte{byte(r)}
				}
				out, err := m.Broadcast(context.Background(), 0, in)
				if err != nil {
					t.Error(err)
					return
				}
				got[i] = append(got[i], string(out))
			}
		}(i, m)
	}
	wg.Wait()

	require.Equal(t, got[0], got[1], "both members must observe the same round sequence")
	require.Len(t, got[0], rounds)
}

func TestBroadcast_RootOutOfRange(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a"})

	_, err := members[0].Broadcast(context.Background(), 3, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	members := NewGroup([]string{"a", "b"})
	require.NoError(t, members[0].Close(context.Background()))
	require.NoError(t, members[0].Close(context.Background()))
	require.NoError(t, members[1].Close(context.Background()))
}
