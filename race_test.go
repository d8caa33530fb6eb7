package safely

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceTimeoutFutureWins(t *testing.T) {
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		time.Sleep(5 * time.Millisecond)
		return 7, nil
	})

	v, err := RaceTimeout(f, time.Second).Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestRaceTimeoutRejectionWins(t *testing.T) {
	sentinel := errors.New("fast failure")
	f, settle := NewPromise[int]()
	raced := RaceTimeout(f, time.Second)
	settle(0, sentinel)

	_, err := raced.Wait()
	assert.True(t, err == sentinel, "a rejection that settles first is passed through")
	assert.False(t, IsTimeout(err))
}

func TestRaceTimeoutTimerWins(t *testing.T) {
	f, settle := NewPromise[int]()
	defer settle(0, nil)

	_, err := RaceTimeout(f, 20*time.Millisecond).Wait()
	require.Error(t, err)
	assert.Equal(t, "Timeout after 20ms", err.Error())
	assert.ErrorIs(t, err, ErrTimeout)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 20*time.Millisecond, te.After)
}

func TestRaceTimeoutDoesNotCancelLoser(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	f := Go(context.Background(), func(ctx context.Context) (string, error) {
		<-release
		close(finished)
		return "late", nil
	})

	_, err := RaceTimeout(f, 10*time.Millisecond).Wait()
	require.True(t, IsTimeout(err))

	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("losing computation should run to completion")
	}

	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, "late", v, "the loser keeps its own outcome")
}

func TestRaceTimeoutSettledFutureReturnedAsIs(t *testing.T) {
	f := Resolve(1)
	assert.True(t, RaceTimeout(f, time.Millisecond) == f)
}

func TestRaceTimeoutPanicsOnInvalidArgs(t *testing.T) {
	mustPanicContains(t, "non-nil future", func() {
		RaceTimeout[int](nil, time.Second)
	})
	mustPanicContains(t, "d > 0", func() {
		RaceTimeout(Resolve(1), 0)
	})
	mustPanicContains(t, "d > 0", func() {
		RaceTimeout(Resolve(1), -time.Second)
	})
}

func TestTimeoutErrorTruncatesToMilliseconds(t *testing.T) {
	assert.Equal(t, "Timeout after 0ms", (&TimeoutError{After: 500 * time.Microsecond}).Error())
	assert.Equal(t, "Timeout after 1ms", (&TimeoutError{After: 1500 * time.Microsecond}).Error())
}
