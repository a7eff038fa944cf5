package substitute

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

func (l label) String() string { return "label:" + string(l) }

type counter struct{ n int }

func (c *counter) String() string { return fmt.Sprintf("count=%d", c.n) }

type failure struct{ msg string }

func (f *failure) Error() string { return f.msg }

func TestFormat(t *testing.T) {
	var nilPtr *int
	var nilCounter *counter
	var nilFailure *failure
	n := 7

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, Unfilled},
		{"Nil Pointer", nilPtr, Unfilled},
		{"Pointer", &n, "7"},
		{"True", true, "Yes"},
		{"False", false, "No"},
		{"String", "text", "text"},
		{"Int", 42, "42"},
		{"Float", 1.5, "1.5"},
		{"Bytes", []byte("raw"), "raw"},
		{"Stringer", label("x"), "label:x"},
		{"Pointer Stringer", &counter{n: 3}, "count=3"},
		{"Nil Pointer Stringer", nilCounter, Unfilled},
		{"Nil Pointer Error", nilFailure, Unfilled},
		{"Nil Stringer In List", []fmt.Stringer{nilCounter, label("y")}, "- [To be filled]\n- label:y"},
		{"Error", errors.New("bad"), "bad"},
		{"Time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
		{"Empty List", []string{}, NoneSpecified},
		{"Nil List", []string(nil), NoneSpecified},
		{"List", []string{"a", "b"}, "- a\n- b"},
		{"Mixed List", []any{1, true, nil}, "- 1\n- Yes\n- [To be filled]"},
		{"Array", [2]int{1, 2}, "- 1\n- 2"},
		{"Map Sorted", map[string]any{"b": 2, "a": "x"}, "- a: x\n- b: 2"},
		{"Empty Map", map[string]int{}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Format(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type exploding struct{}

func (exploding) String() string { panic("kaboom") }

func TestFormatRecoversPanics(t *testing.T) {
	_, err := Format([]any{"fine", exploding{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}
