// Package ping builds the server list ping response.
package ping

import (
	"encoding/json"
	"fmt"

	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/kasumi/pkg/util/componentutil"
	"go.minekube.com/kasumi/pkg/util/favicon"
	"go.minekube.com/kasumi/pkg/util/uuid"
)

// ServerPing is a server list ping response.
type ServerPing struct {
	Version            Version         `json:"version"`
	Players            *Players        `json:"players,omitempty"`
	Description        *component.Text `json:"description"`
	Favicon            favicon.Favicon `json:"favicon,omitempty"`
	EnforcesSecureChat bool            `json:"enforcesSecureChat"`
}

// Make sure ServerPing implements the interfaces at compile time.
var (
	_ json.Marshaler   = (*ServerPing)(nil)
	_ json.Unmarshaler = (*ServerPing)(nil)
)

func (p *ServerPing) MarshalJSON() ([]byte, error) {
	desc := p.Description
	if desc == nil {
		desc = &component.Text{}
	}
	b, err := componentutil.MarshalJSON(desc)
	if err != nil {
		return nil, err
	}

	type Alias ServerPing
	return json.Marshal(&struct {
		Description json.RawMessage `json:"description"`
		*Alias
	}{
		Description: b,
		Alias:       (*Alias)(p),
	})
}

func (p *ServerPing) UnmarshalJSON(data []byte) error {
	type Alias ServerPing
	out := &struct {
		Alias
		Description json.RawMessage `json:"description"` // override description type
	}{}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error decoding json: %w", err)
	}

	if len(out.Description) == 0 || string(out.Description) == "null" {
		out.Alias.Description = &component.Text{} // empty component
	} else {
		var desc string
		if json.Unmarshal(out.Description, &desc) == nil {
			out.Alias.Description = &component.Text{Content: desc}
		} else {
			var err error
			out.Alias.Description, err = componentutil.ParseTextComponent(string(out.Description))
			if err != nil {
				return fmt.Errorf("error decoding description: %w", err)
			}
		}
	}

	*p = ServerPing(out.Alias)
	return nil
}

type Version struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

type Players struct {
	Max    int            `json:"max"`
	Online int            `json:"online"`
	Sample []SamplePlayer `json:"sample,omitempty"`
}

type SamplePlayer struct {
	Name string    `json:"name"`
	ID   uuid.UUID `json:"id"`
}
