package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct {
	Value string
}

func (c pingCommand) Validate() error {
	if c.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func TestCommandBus_Send(t *testing.T) {
	b := NewCommandBus(LoggingMiddleware(zap.NewNop()))
	require.NoError(t, b.Register(pingCommand{}, Typed(func(_ context.Context, cmd pingCommand) (string, error) {
		return "pong:" + cmd.Value, nil
	})))

	result, err := b.Send(context.Background(), pingCommand{Value: "x"})

	require.NoError(t, err)
	assert.Equal(t, "pong:x", result)
}

func TestCommandBus_ValidationFailsBeforeHandler(t *testing.T) {
	called := false
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, Typed(func(context.Context, pingCommand) (string, error) {
		called = true
		return "", nil
	})))

	_, err := b.Send(context.Background(), pingCommand{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "command validation failed")
	assert.False(t, called)
}

func TestCommandBus_WrapsHandlerError(t *testing.T) {
	sentinel := errors.New("boom")
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, Typed(func(context.Context, pingCommand) (string, error) {
		return "", sentinel
	})))

	result, err := b.Send(context.Background(), pingCommand{Value: "x"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, sentinel)
}

func TestCommandBus_UnknownCommand(t *testing.T) {
	b := NewCommandBus()

	_, err := b.Send(context.Background(), otherCommand{})

	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	h := Typed(func(context.Context, otherCommand) (struct{}, error) { return struct{}{}, nil })

	require.NoError(t, b.Register(otherCommand{}, h))
	assert.Error(t, b.Register(otherCommand{}, h))
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	var observed string
	b := NewCommandBus(tag("outer"), tag("inner"), MetricsMiddleware(func(name string, _ time.Duration, err error) {
		observed = name
		assert.NoError(t, err)
	}))
	require.NoError(t, b.Register(otherCommand{}, Typed(func(context.Context, otherCommand) (int, error) {
		order = append(order, "handler")
		return 1, nil
	})))

	_, err := b.Send(context.Background(), otherCommand{})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	assert.Equal(t, "otherCommand", observed)
}
