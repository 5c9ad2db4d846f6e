package credential

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionReadsOnceUntilInvalidated(t *testing.T) {
	reads := 0
	stored := "first"
	s := NewSession(func() (string, error) {
		reads++
		return stored, nil
	})

	assert.Equal(t, "first", s.Token())
	assert.Equal(t, "first", s.Token())
	assert.Equal(t, 1, reads)

	stored = "second"
	assert.Equal(t, "first", s.Token())

	s.Invalidate()
	assert.Equal(t, "second", s.Token())
	assert.Equal(t, 2, reads)
}

func TestSessionRetriesFailedRead(t *testing.T) {
	reads := 0
	s := NewSession(func() (string, error) {
		reads++
		if reads == 1 {
			return "", errors.New("keyring locked")
		}
		return "tok", nil
	})

	assert.Equal(t, "", s.Token())
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, 2, reads)
}

func TestSessionCachesMissingToken(t *testing.T) {
	reads := 0
	s := NewSession(func() (string, error) {
		reads++
		return "", nil
	})

	assert.Equal(t, "", s.Token())
	assert.Equal(t, "", s.Token())
	assert.Equal(t, 1, reads)
}
