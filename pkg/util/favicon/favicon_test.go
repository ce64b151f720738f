package favicon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImage_Resizes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	img.Set(0, 0, color.White)

	f, err := FromImage(img)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix([]byte(f), []byte(dataFullPrefix)))

	decoded, err := png.Decode(bytes.NewReader(f.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Size, decoded.Bounds().Dx())
	assert.Equal(t, Size, decoded.Bounds().Dy())
}

func TestParse(t *testing.T) {
	f, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, f)

	const uri = "data:image/png;base64,AAAA"
	f, err = Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, Favicon(uri), f)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "icon.png")
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewGray(image.Rect(0, 0, 16, 16))))
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0o644))
	f, err = Parse(file)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(f.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 16, decoded.Bounds().Dx(), "small icons are not scaled")
}
