package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func TestRandomCode_IsSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := RandomCode()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestUniqueCode_RedrawsTakenCodes(t *testing.T) {
	draws := []string{"000042", "000042", "123456"}
	i := 0
	gen := func() (string, error) {
		c := draws[i]
		i++
		return c, nil
	}
	inUse := func(_ context.Context, code string) (bool, error) {
		return code == "000042", nil
	}

	code, err := uniqueCode(context.Background(), gen, inUse)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, 3, i)
}

func TestUniqueCode_GivesUpAfterMaxAttempts(t *testing.T) {
	gen := func() (string, error) { return "111111", nil }
	inUse := func(context.Context, string) (bool, error) { return true, nil }

	_, err := uniqueCode(context.Background(), gen, inUse)
	assert.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
}

func TestUniqueCode_PropagatesStoreError(t *testing.T) {
	gen := func() (string, error) { return "222222", nil }
	inUse := func(context.Context, string) (bool, error) { return false, errors.New("db down") }

	_, err := uniqueCode(context.Background(), gen, inUse)
	assert.Error(t, err)
	assert.Equal(t, domain.KindTransient, domain.KindOf(err))
}

func TestLotLocker_SerialisesSameLot(t *testing.T) {
	locker := NewLotLocker()
	counter := 0
	maxSeen := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("north")
			defer unlock()

			mu.Lock()
			counter++
			if counter > maxSeen {
				maxSeen = counter
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}
