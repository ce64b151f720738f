// Package favicon loads the server list icon.
package favicon

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/nfnt/resize"
)

// Size is the width and height of a favicon in pixels.
const Size = 64

// Favicon is 64x64 sized data uri image send in response to a server list ping.
// Refer to https://en.wikipedia.org/wiki/Data_URI_scheme for details.
// Example: "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAEAAAAABCAYAAABubagXAAAAEElEQVR42mP8z8BQzzCCAQB+lAGA+H8KEAAAAABJRU5ErkJggg=="
type Favicon string

// FromImage converts an image.Image to Favicon.
func FromImage(img image.Image) (Favicon, error) {
	// Resize down to 64x64 if necessary
	if b := img.Bounds(); b.Dx() > Size || b.Dy() > Size {
		img = resize.Resize(Size, Size, img, resize.NearestNeighbor)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", err
	}
	return FromBytes(buf.Bytes()), nil
}

// FromFile takes the filename of a png or jpeg image and converts it to Favicon.
func FromFile(filename string) (Favicon, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", err
	}
	return FromImage(img)
}

const (
	dataImagePrefix = "data:image/"
	dataFullPrefix  = dataImagePrefix + "png;base64,"
)

// Parse takes a data uri string or filename and converts it to Favicon.
// An empty string returns an empty Favicon.
func Parse(s string) (Favicon, error) {
	if s == "" {
		return "", nil
	}
	if strings.HasPrefix(s, dataImagePrefix) {
		return Favicon(s), nil
	}
	if stat, err := os.Stat(s); err == nil && !stat.IsDir() {
		f, err := FromFile(s)
		if err != nil {
			return "", fmt.Errorf("favicon: %w", err)
		}
		return f, nil
	}
	return "", fmt.Errorf("favicon: invalid format or file not found: %s", s)
}

// FromBytes takes the png encoding of an image and converts it to Favicon.
func FromBytes(b []byte) Favicon {
	b64 := base64.StdEncoding.EncodeToString(b)
	return Favicon(dataFullPrefix + b64)
}

// Bytes returns the png encoding of the favicon.
func (f Favicon) Bytes() []byte {
	s := strings.TrimPrefix(string(f), dataFullPrefix)
	b, _ := base64.StdEncoding.DecodeString(s)
	return b
}
