package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/dPool/lib/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePool hands out numbered handles and records what happens to them
type fakePool struct {
	next     int
	popErrs  []error // popErrs[i] is returned by the i-th PopContext call, nil hands out a handle
	pops     int
	released []int
	removed  []int
}

func (p *fakePool) PopContext(ctx context.Context) (int, error) {
	i := p.pops
	p.pops++
	if i < len(p.popErrs) && p.popErrs[i] != nil {
		return 0, p.popErrs[i]
	}
	p.next++
	return p.next, nil
}

func (p *fakePool) Keepalive(client int) error {
	p.released = append(p.released, client)
	return nil
}

func (p *fakePool) Remove(client int) {
	p.removed = append(p.removed, client)
}

func (p *fakePool) Kind() string {
	return "compose-review"
}

// failing returns a call that fails with the given errors in order and succeeds afterwards
func failing(errs ...error) (func(int) (string, error), *[]int) {
	var seen []int
	return func(client int) (string, error) {
		seen = append(seen, client)
		if len(seen) <= len(errs) {
			return "", errs[len(seen)-1]
		}
		return fmt.Sprintf("ok from %d", client), nil
	}, &seen
}

func transportFault() error {
	return fault.Transport("compose-review.UploadText", errors.New("connection reset by peer"))
}

func TestInvokeSuccess(t *testing.T) {
	p := &fakePool{}
	call, seen := failing()

	result, err := Invoke(context.Background(), p, Options{}, call)
	require.NoError(t, err)
	assert.Equal(t, "ok from 1", result)
	assert.Equal(t, []int{1}, *seen)
	assert.Equal(t, []int{1}, p.released)
	assert.Empty(t, p.removed)
}

func TestInvokeTransportFaultTwiceThenSuccess(t *testing.T) {
	p := &fakePool{}
	call, seen := failing(transportFault(), transportFault())

	result, err := Invoke(context.Background(), p, Options{}, call)
	require.NoError(t, err)
	assert.Equal(t, "ok from 3", result)

	// every attempt used a fresh handle, the broken ones were removed
	assert.Equal(t, []int{1, 2, 3}, *seen)
	assert.Equal(t, []int{1, 2}, p.removed)
	assert.Equal(t, []int{3}, p.released)
	assert.Equal(t, 3, p.pops)
}

func TestInvokeExhausted(t *testing.T) {
	p := &fakePool{}
	last := transportFault()
	call, seen := failing(transportFault(), transportFault(), last)

	_, err := Invoke(context.Background(), p, Options{}, call)
	assert.Same(t, last, err)
	assert.ErrorIs(t, err, fault.ErrTransport)

	assert.Len(t, *seen, DefaultAttempts)
	assert.Equal(t, []int{1, 2}, p.removed)
	// the last handle goes back to the pool, it is reconnected there
	assert.Equal(t, []int{3}, p.released)
}

func TestInvokeAttemptsOption(t *testing.T) {
	p := &fakePool{}
	call, seen := failing(transportFault(), transportFault(), transportFault(), transportFault())

	_, err := Invoke(context.Background(), p, Options{Attempts: 5}, call)
	require.NoError(t, err)
	assert.Len(t, *seen, 5)

	p = &fakePool{}
	call, seen = failing(transportFault())
	_, err = Invoke(context.Background(), p, Options{Attempts: 1}, call)
	assert.True(t, fault.IsTransport(err))
	assert.Len(t, *seen, 1)
	assert.Empty(t, p.removed)
	assert.Equal(t, []int{1}, p.released)
}

func TestInvokeApplicationFaultIsNotRetried(t *testing.T) {
	p := &fakePool{}
	appErr := fault.Application("compose-review.UploadRating", 4, "rating 11 is out of range [0, 10]")
	call, seen := failing(appErr)

	_, err := Invoke(context.Background(), p, Options{}, call)
	assert.Same(t, appErr, err)
	assert.Len(t, *seen, 1)
	assert.Equal(t, []int{1}, p.released)
	assert.Empty(t, p.removed)
}

func TestInvokeUnclassifiedErrorIsNotRetried(t *testing.T) {
	p := &fakePool{}
	call, seen := failing(errors.New("boom"))

	_, err := Invoke(context.Background(), p, Options{}, call)
	assert.EqualError(t, err, "boom")
	assert.Len(t, *seen, 1)
	assert.Equal(t, []int{1}, p.released)
}

func TestInvokeInitialPopFails(t *testing.T) {
	popErr := fault.PoolTimeout("pool.Pop", 500*time.Millisecond)
	p := &fakePool{popErrs: []error{popErr}}
	call, seen := failing()

	_, err := Invoke(context.Background(), p, Options{}, call)
	require.Error(t, err)
	assert.Equal(t, fault.KindConnection, fault.KindOf(err))
	assert.ErrorIs(t, err, fault.ErrPoolTimeout)
	assert.Contains(t, err.Error(), "failed to connect to compose-review")

	assert.Empty(t, *seen)
	assert.Empty(t, p.released)
	assert.Empty(t, p.removed)
}

func TestInvokeReconnectFails(t *testing.T) {
	popErr := fault.Connection("pool.Pop", "failed to connect compose-review at 127.0.0.1:9090", errors.New("refused"))
	p := &fakePool{popErrs: []error{nil, popErr}}
	call, seen := failing(transportFault())

	_, err := Invoke(context.Background(), p, Options{}, call)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reconnect to compose-review")
	assert.ErrorIs(t, err, fault.ErrConnection)

	// the broken handle was removed, there is nothing left to hand back
	assert.Equal(t, []int{1}, *seen)
	assert.Equal(t, []int{1}, p.removed)
	assert.Empty(t, p.released)
}

func TestDo(t *testing.T) {
	p := &fakePool{}
	calls := 0

	err := Do(context.Background(), p, Options{Op: "UploadText"}, func(client int) error {
		calls++
		if calls == 1 {
			return transportFault()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{1}, p.removed)
	assert.Equal(t, []int{2}, p.released)
}

func TestEveryHandleIsReleasedOrRemovedOnce(t *testing.T) {
	scenarios := map[string][]error{
		"success":     nil,
		"one fault":   {transportFault()},
		"exhausted":   {transportFault(), transportFault(), transportFault()},
		"application": {fault.Application("op", 1, "bad")},
	}

	for name, errs := range scenarios {
		t.Run(name, func(t *testing.T) {
			p := &fakePool{}
			call, _ := failing(errs...)
			_, _ = Invoke(context.Background(), p, Options{}, call)

			handled := map[int]int{}
			for _, c := range p.released {
				handled[c]++
			}
			for _, c := range p.removed {
				handled[c]++
			}
			assert.Len(t, handled, p.next)
			for client, n := range handled {
				assert.Equal(t, 1, n, "client %d handled %d times", client, n)
			}
		})
	}
}

func TestIsReconnectFailure(t *testing.T) {
	popErr := fault.Connection("pool.Pop", "failed", errors.New("refused"))

	p := &fakePool{popErrs: []error{popErr}}
	_, err := Invoke(context.Background(), p, Options{}, func(int) (int, error) { return 0, nil })
	assert.False(t, IsReconnectFailure(err))

	p = &fakePool{popErrs: []error{nil, popErr}}
	_, err = Invoke(context.Background(), p, Options{}, func(int) (int, error) { return 0, transportFault() })
	assert.True(t, IsReconnectFailure(err))

	assert.False(t, IsReconnectFailure(transportFault()))
}
