package session

import (
	"encoding/json"

	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/kasumi/pkg/ping"
	"go.minekube.com/kasumi/pkg/proto"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/proto/state"
)

const statusCacheKey = "status"

func (h *Handlers) handleStatusRequest(c state.Conn, _ *packet.StatusRequest) error {
	var status string
	if h.statusCache != nil {
		status = h.statusCache.Get(statusCacheKey).Value()
	} else {
		status = h.statusJSON(statusCacheKey)
	}
	return c.WritePacket(&packet.StatusResponse{Status: status})
}

// handleStatusPing echoes the ping and ends the status exchange.
func (h *Handlers) handleStatusPing(c state.Conn, p *packet.StatusPing) error {
	if err := c.WritePacket(&packet.StatusPing{RandomID: p.RandomID}); err != nil {
		return err
	}
	return proto.ErrConnDone
}

// ServerPing returns the current server list ping response.
func (h *Handlers) ServerPing() *ping.ServerPing {
	motd := h.opts.Motd
	if motd == nil {
		motd = &component.Text{}
	}
	p := &ping.ServerPing{
		Version: ping.Version{
			Name:     h.opts.VersionName,
			Protocol: packet.Protocol,
		},
		Description: motd,
		Favicon:     h.opts.Favicon,
	}
	if h.opts.ShowMaxPlayers {
		p.Players = &ping.Players{
			Max:    h.opts.MaxPlayers,
			Online: h.opts.Online(),
		}
	}
	return p
}

func (h *Handlers) statusJSON(string) string {
	b, err := json.Marshal(h.ServerPing())
	if err != nil {
		// Only the description can fail to encode.
		b, _ = json.Marshal(&ping.ServerPing{Version: ping.Version{Name: h.opts.VersionName, Protocol: packet.Protocol}})
	}
	return string(b)
}
