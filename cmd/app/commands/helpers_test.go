package commands

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithInterrupt(t *testing.T) {
	t.Run("cancelled-by-sigterm", func(t *testing.T) {
		ctx, stop := WithInterrupt(context.Background())
		defer stop()

		require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

		select {
		case <-ctx.Done():
			assert.ErrorIs(t, ctx.Err(), context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("context was not cancelled by SIGTERM")
		}
	})

	t.Run("stop-cancels", func(t *testing.T) {
		ctx, stop := WithInterrupt(context.Background())
		stop()
		assert.Error(t, ctx.Err())
	})

	t.Run("parent-cancellation-propagates", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := WithInterrupt(parent)
		defer stop()

		cancel()
		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("yaml"))
}
