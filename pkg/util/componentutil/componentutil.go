// Package componentutil parses and encodes text components.
package componentutil

import (
	"bytes"
	"errors"
	"strings"

	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec"
	"go.minekube.com/common/minecraft/component/codec/legacy"
)

// JsonCodec is the JSON component codec of modern clients.
var JsonCodec = &codec.Json{
	NoDownsampleColor: true,
	NoLegacyHover:     true,
}

// ParseTextComponent parses s as a JSON text component if it starts with '{'
// and as legacy '&' or '§' formatted text otherwise.
func ParseTextComponent(s string) (t *component.Text, err error) {
	var c component.Component
	if strings.HasPrefix(s, "{") {
		c, err = JsonCodec.Unmarshal([]byte(s))
	} else {
		c, err = legacyCodec(s).Unmarshal([]byte(s))
	}
	if err != nil {
		return nil, err
	}
	t, ok := c.(*component.Text)
	if !ok {
		return nil, errors.New("invalid text component")
	}
	return t, nil
}

// legacyCodec uses '&' codes unless s already contains '§' codes.
func legacyCodec(s string) *legacy.Legacy {
	if strings.ContainsRune(s, '§') {
		return &legacy.Legacy{}
	}
	return &legacy.Legacy{Char: legacy.AmpersandChar}
}

// MarshalJSON encodes c with JsonCodec.
func MarshalJSON(c component.Component) ([]byte, error) {
	b := new(bytes.Buffer)
	err := JsonCodec.Marshal(b, c)
	return b.Bytes(), err
}
