package event

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_FireOrder(t *testing.T) {
	ch := New[string]("recognizing")

	var got []string
	ch.Subscribe(func(sender any, payload string) {
		got = append(got, "first:"+payload)
	})
	ch.Subscribe(func(sender any, payload string) {
		got = append(got, "second:"+payload)
	})

	ch.Fire(nil, "hello")

	assert.Equal(t, []string{"first:hello", "second:hello"}, got)
}

func TestChannel_FireNoSubscribers(t *testing.T) {
	ch := New[int]("empty")
	assert.NotPanics(t, func() {
		ch.Fire(nil, 1)
	})
	assert.Equal(t, 0, ch.Len())
}

func TestChannel_SenderIsPassedThrough(t *testing.T) {
	ch := New[int]("sender")
	sender := &struct{ name string }{name: "recognizer"}

	var gotSender any
	ch.Subscribe(func(s any, _ int) {
		gotSender = s
	})
	ch.Fire(sender, 42)

	assert.Same(t, sender, gotSender)
}

func TestChannel_Unsubscribe(t *testing.T) {
	tests := []struct {
		name      string
		subscribe int
		remove    []int
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "remove only subscriber",
			subscribe: 1,
			remove:    []int{0},
			wantCalls: 0,
		},
		{
			name:      "remove middle subscriber",
			subscribe: 3,
			remove:    []int{1},
			wantCalls: 2,
		},
		{
			name:      "remove twice",
			subscribe: 2,
			remove:    []int{0, 0},
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := New[int]("test")
			calls := 0
			handles := make([]Handle, 0, tt.subscribe)
			for i := 0; i < tt.subscribe; i++ {
				handles = append(handles, ch.Subscribe(func(any, int) { calls++ }))
			}

			var err error
			for _, idx := range tt.remove {
				if e := ch.Unsubscribe(handles[idx]); e != nil {
					err = e
				}
			}

			ch.Fire(nil, 0)
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownHandle)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChannel_UnsubscribeDuringFire(t *testing.T) {
	ch := New[string]("recognizing")

	var (
		order []string
		first Handle
	)
	first = ch.Subscribe(func(sender any, payload string) {
		order = append(order, "first")
		require.NoError(t, ch.Unsubscribe(first))
	})
	ch.Subscribe(func(sender any, payload string) {
		order = append(order, "second")
	})

	ch.Fire(nil, "partial")
	assert.Equal(t, []string{"first", "second"}, order)

	// The first subscriber is gone for the next fire.
	order = nil
	ch.Fire(nil, "partial")
	assert.Equal(t, []string{"second"}, order)
}

func TestChannel_SubscribeDuringFire(t *testing.T) {
	ch := New[int]("late")

	lateCalls := 0
	ch.Subscribe(func(any, int) {
		ch.Subscribe(func(any, int) { lateCalls++ })
	})

	ch.Fire(nil, 1)
	assert.Equal(t, 0, lateCalls, "subscriber added during fire must not see that fire")

	ch.Fire(nil, 2)
	assert.Equal(t, 1, lateCalls)
}

func TestChannel_PanicIsolation(t *testing.T) {
	var reported []error
	ch := New[int]("canceled", WithErrorReporter(func(err error) {
		reported = append(reported, err)
	}))

	boom := errors.New("boom")
	secondCalled := false
	ch.Subscribe(func(any, int) { panic(boom) })
	ch.Subscribe(func(any, int) { secondCalled = true })

	assert.NotPanics(t, func() {
		ch.Fire(nil, 1)
	})
	assert.True(t, secondCalled)
	require.Len(t, reported, 1)

	var panicErr *HandlerPanicError
	require.ErrorAs(t, reported[0], &panicErr)
	assert.Equal(t, "canceled", panicErr.Channel)
	assert.ErrorIs(t, reported[0], boom)
}

func TestChannel_PanicWithoutReporter(t *testing.T) {
	ch := New[int]("quiet")
	ch.Subscribe(func(any, int) { panic("not an error") })
	assert.NotPanics(t, func() {
		ch.Fire(nil, 1)
	})
}

func TestChannel_ConcurrentFireAndSubscribe(t *testing.T) {
	ch := New[int]("concurrent")

	var (
		mu    sync.Mutex
		total int
	)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h := ch.Subscribe(func(any, int) {
				mu.Lock()
				total++
				mu.Unlock()
			})
			_ = ch.Unsubscribe(h)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ch.Fire(nil, j)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, ch.Len())
}
