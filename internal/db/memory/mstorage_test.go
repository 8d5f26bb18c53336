package memory

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	Key string
	Val int
}

func TestSet(t *testing.T) {
	type args[T any] struct {
		key  string
		val  *T
		m    *MStorage
		opts []func(*SetOptions)
	}
	type testCase[T any] struct {
		name    string
		args    args[T]
		wantErr error
	}
	ms := NewMemStorage()
	tests := []testCase[target]{
		{
			name: "default",
			args: args[target]{
				key: "key1",
				val: &target{Key: "key1", Val: 1},
				m:   ms,
			},
		}, {
			name: "duplicate records",
			args: args[target]{
				key: "key1",
				val: &target{Key: "key1", Val: 2},
				m:   ms,
			},
			wantErr: ErrDuplicateKey,
		}, {
			name: "overwrite",
			args: args[target]{
				key:  "key1",
				val:  &target{Key: "key1", Val: 3},
				m:    ms,
				opts: []func(*SetOptions){WithOverwrite()},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Set[target](t.Context(), tt.args.key, tt.args.val, tt.args.m, tt.args.opts...)
			if err != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: Set() error = %+v, wantErr %+v", tt.name, err, tt.wantErr)
			}

			if tt.wantErr == nil {
				val, getErr := Get[target](t.Context(), tt.args.key, tt.args.m)
				if getErr != nil {
					t.Fatal(getErr)
				}
				if val.Key != tt.args.val.Key || val.Val != tt.args.val.Val {
					t.Errorf("%s: Set() Val = %+v, want %+v", tt.name, val, tt.args.val)
				}
			}
		})
	}
}

func TestSet_ConcurrentSameKey(t *testing.T) {
	ms := NewMemStorage()
	const workers = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := Set(t.Context(), "same", &target{Key: "same", Val: i}, ms); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, ms.Len())
}

func TestUpdate(t *testing.T) {
	ms := NewMemStorage()
	require.NoError(t, Set(t.Context(), "counter", &target{Key: "counter"}, ms))

	const workers = 100
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := Update(t.Context(), "counter", ms, func(v *target) error {
				v.Val++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	val, err := Get[target](t.Context(), "counter", ms)
	require.NoError(t, err)
	assert.Equal(t, workers, val.Val)

	err = Update(t.Context(), "missing", ms, func(*target) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)

	fnErr := errors.New("boom")
	err = Update(t.Context(), "counter", ms, func(v *target) error {
		v.Val = -1
		return fnErr
	})
	require.ErrorIs(t, err, fnErr)
	val, err = Get[target](t.Context(), "counter", ms)
	require.NoError(t, err)
	assert.Equal(t, workers, val.Val)
}

func TestDeleteFunc(t *testing.T) {
	ms := NewMemStorage()
	require.NoError(t, Set(t.Context(), "k", &target{Key: "k", Val: 7}, ms))

	deleted, err := DeleteFunc(t.Context(), "k", ms, func(v target) bool { return v.Val == 1 })
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, ms.Len())

	deleted, err = DeleteFunc(t.Context(), "k", ms, func(v target) bool { return v.Val == 7 })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, ms.Len())

	deleted, err = DeleteFunc(t.Context(), "k", ms, func(target) bool { return true })
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFilterAll(t *testing.T) {
	ms := NewMemStorage()
	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, Set(t.Context(), key, &target{Key: key, Val: i}, ms))
	}

	got, err := FilterAll(t.Context(), ms, func(v target) bool { return v.Val > 0 })
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = FilterAll(t.Context(), ms, func(target) bool { return false })
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSnapshotRestore(t *testing.T) {
	src := NewMemStorage()
	require.NoError(t, Set(t.Context(), "a", &target{Key: "a", Val: 1}, src))
	require.NoError(t, Set(t.Context(), "b", &target{Key: "b", Val: 2}, src))

	var buf bytes.Buffer
	require.NoError(t, src.Snapshot(&buf))

	dst := NewMemStorage()
	require.NoError(t, dst.Restore(&buf))
	assert.Equal(t, 2, dst.Len())

	val, err := Get[target](t.Context(), "b", dst)
	require.NoError(t, err)
	assert.Equal(t, target{Key: "b", Val: 2}, *val)
}
