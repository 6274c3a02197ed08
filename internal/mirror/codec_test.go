package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mytodos/internal/model"
)

func TestCodecRoundTrip(t *testing.T) {
	in := []model.Todo{
		{ID: 7, Title: "ship it", Completed: false},
		{ID: 2, Title: "Buy groceries", Completed: true},
		{ID: 4, Title: "ünïcode ✔", Completed: false},
	}
	b, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeLayout(t *testing.T) {
	b, err := Encode([]model.Todo{{ID: 1, Title: "a", Completed: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"a","completed":true}]`, string(b))

	b, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestDecodeBlank(t *testing.T) {
	for _, in := range []string{"", "  \n"} {
		out, err := Decode([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"not json":        `{oops`,
		"object":          `{"id":1}`,
		"missing field":   `[{"id":1,"title":"a"}]`,
		"string id":       `[{"id":"1","title":"a","completed":false}]`,
		"fractional id":   `[{"id":1.5,"title":"a","completed":false}]`,
		"bad completed":   `[{"id":1,"title":"a","completed":"yes"}]`,
		"duplicate ids":   `[{"id":1,"title":"a","completed":false},{"id":1,"title":"b","completed":true}]`,
		"null collection": `null`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	out, err := Decode([]byte(`[{"id":3,"title":"x","completed":false,"extra":1}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.Todo{{ID: 3, Title: "x"}}, out)
}
