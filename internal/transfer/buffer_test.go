package transfer

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedPipeRoundTripsData(t *testing.T) {
	r, w := NewBoundedPipe(1024)

	go func() {
		io.WriteString(w, "hello world")
		w.Close()
	}()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestBoundedPipeDeliversMoreThanCapacityWhenDrained(t *testing.T) {
	r, w := NewBoundedPipe(4) // smaller than the total payload below

	const payload = "abcdefghijklmnop"
	done := make(chan error, 1)
	go func() {
		_, err := io.WriteString(w, payload)
		w.Close()
		done <- err
	}()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))

	select {
	case writeErr := <-done:
		require.NoError(t, writeErr)
	case <-time.After(2 * time.Second):
		t.Fatal("writer goroutine never finished")
	}
}
