package function

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greet(ev Event, _ Context) string {
	if ev.HasData() {
		return "Hello, " + string(ev.Data)
	}
	return "Hello"
}

func farewell(ev Event, _ Context) string {
	return "Goodbye"
}

func TestRegistry_Select(t *testing.T) {
	r, err := NewRegistry(Func("greet", greet), Func("farewell", farewell))
	require.NoError(t, err)

	h, err := r.Select("farewell")
	require.NoError(t, err)
	assert.Equal(t, "Goodbye", h(Event{}, Context{}))

	h, err = r.Select("greet")
	require.NoError(t, err)
	assert.Equal(t, "Hello, World", h(Event{Data: []byte("World")}, Context{}))
}

func TestRegistry_SelectUnknownListsCandidatesInOrder(t *testing.T) {
	r, err := NewRegistry(Func("greet", greet), Func("farewell", farewell), Func("alpha", greet))
	require.NoError(t, err)

	_, err = r.Select("nonexistent")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nonexistent", nf.Name)
	assert.Equal(t, []string{"greet", "farewell", "alpha"}, nf.Available)
	assert.Equal(t,
		`no function named "nonexistent" available, available functions are: greet, farewell, alpha`,
		err.Error())
}

func TestRegistry_FirstRegistrationWins(t *testing.T) {
	r, err := NewRegistry(
		Func("greet", greet),
		Func("greet", farewell),
	)
	require.NoError(t, err)

	h, err := r.Select("greet")
	require.NoError(t, err)
	assert.Equal(t, "Hello", h(Event{}, Context{}))
	assert.Equal(t, []string{"greet"}, r.Duplicates())
	assert.Equal(t, []string{"greet", "greet"}, r.Names())
}

func TestNewRegistry_Invalid(t *testing.T) {
	_, err := NewRegistry()
	assert.ErrorIs(t, err, ErrNoFunctions)

	_, err = NewRegistry(Func("", greet))
	assert.Error(t, err)

	_, err = NewRegistry(Func("nil", nil))
	assert.ErrorContains(t, err, `"nil"`)
}

func TestRegistry_NamesIsACopy(t *testing.T) {
	r, err := NewRegistry(Func("greet", greet))
	require.NoError(t, err)

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"greet"}, r.Names())
}

func TestEvent_HasData(t *testing.T) {
	assert.False(t, Event{}.HasData())
	assert.True(t, Event{Data: []byte{}}.HasData())
}
