package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct{ Text string }

func (echoCommand) Key() string { return "test.echo" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoCommand, string](bus, HandlerFunc[echoCommand, string](func(_ context.Context, cmd echoCommand) (string, error) {
		return "echo:" + cmd.Text, nil
	}))

	got, err := Dispatch[echoCommand, string](context.Background(), bus, echoCommand{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", got)
	assert.Equal(t, []string{"test.echo"}, bus.Keys())
}

func TestDispatchErrors(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoCommand, string](bus, HandlerFunc[echoCommand, string](func(context.Context, echoCommand) (string, error) {
		return "ok", nil
	}))

	_, err := Dispatch[otherCommand, string](context.Background(), bus, otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Dispatch[echoCommand, int](context.Background(), bus, echoCommand{})
	assert.ErrorIs(t, err, ErrResultType)
	assert.Contains(t, err.Error(), "test.echo returned string")

	_, err = Dispatch[echoCommand, string](context.Background(), nil, echoCommand{})
	assert.ErrorIs(t, err, ErrNilBus)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[echoCommand, string](func(context.Context, echoCommand) (string, error) { return "", nil })
	RegisterHandler[echoCommand, string](bus, h)
	assert.Panics(t, func() { RegisterHandler[echoCommand, string](bus, h) })
}
