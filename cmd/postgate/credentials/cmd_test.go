package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadPassword(t *testing.T) {
	for in, expected := range map[string]string{
		"correct\n":         "correct",
		"correct\r\n":       "correct",
		"correct":           "correct",
		" padded pw \n":     " padded pw ",
		"\tfirst\nsecond\n": "\tfirst",
	} {
		pw, err := readPassword(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, expected, pw, "input %q", in)
	}
	for _, in := range []string{"", "\n", "   \n"} {
		_, err := readPassword(strings.NewReader(in))
		require.ErrorIs(t, err, errMissingPassword, "input %q", in)
	}
}
