package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorPNG(t *testing.T) {
	gen := NewGenerator(200)
	data, err := gen.PNG("http://localhost:3001/dpp/5f1c")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestGeneratorDefaultsSize(t *testing.T) {
	assert.Equal(t, DefaultSize, NewGenerator(0).Size)
}

func TestGeneratorRejectsEmpty(t *testing.T) {
	_, err := NewGenerator(100).PNG("  ")
	assert.Error(t, err)
}

func TestLinks(t *testing.T) {
	assert.Equal(t, "https://app.example.com/dpp/abc", PassportURL("https://app.example.com/", "abc"))
	assert.Equal(t, "http://localhost:8000/api/public/dpp/batch/7", BatchURL("http://localhost:8000/api", 7))
}
