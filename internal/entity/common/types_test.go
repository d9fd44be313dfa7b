package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONListScan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  []string
	}{
		{"null", nil, []string{}},
		{"empty string", "", []string{}},
		{"json null", "null", []string{}},
		{"text column", `["GOTS","OEKO-TEX"]`, []string{"GOTS", "OEKO-TEX"}},
		{"blob column", []byte(`["/files/compliance/a.pdf"]`), []string{"/files/compliance/a.pdf"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var list StringArray
			require.NoError(t, list.Scan(tc.input))
			assert.Equal(t, tc.want, list.ToSlice())
			assert.NotNil(t, list)
		})
	}

	var lessons IntArray
	assert.Error(t, lessons.Scan(42))
	assert.Error(t, lessons.Scan("{not json"))
}

func TestJSONListValue(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = IntArray{3, 1}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[3,1]", v)
}

func TestBaseParamsPaging(t *testing.T) {
	p := BaseParams{Page: 3, PageSize: 500}
	p.Normalise(20, 100)
	assert.Equal(t, int64(100), p.PageSize)
	assert.Equal(t, 200, p.Offset())

	var empty BaseParams
	empty.Normalise(20, 100)
	assert.Equal(t, int64(1), empty.Page)
	assert.Equal(t, int64(20), empty.PageSize)
	assert.Equal(t, 0, empty.Offset())
}
