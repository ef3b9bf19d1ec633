package texture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		token   string
		want    Size
		wantErr bool
	}{
		{"U8", SizeU8, false},
		{"U16", SizeU16, false},
		{"U32", SizeU32, false},
		{"U64", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseSize(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSizeValid(t *testing.T) {
	assert.True(t, SizeU8.Valid())
	assert.True(t, SizeU16.Valid())
	assert.True(t, SizeU32.Valid())
	assert.False(t, Size(3).Valid())
}

func TestFormatValid(t *testing.T) {
	assert.True(t, RGBA16.Valid())
	assert.True(t, CI8.Valid())
	assert.False(t, Format("BOGUS").Valid())
}

func TestFormatIsCI(t *testing.T) {
	assert.True(t, CI4.IsCI())
	assert.True(t, CI8.IsCI())
	assert.False(t, RGBA16.IsCI())
}
