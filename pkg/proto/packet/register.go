package packet

import "go.minekube.com/kasumi/pkg/proto/state"

// Register registers the decoders of all serverbound packets.
func Register(b *state.Builder) *state.Builder {
	state.Register[Handshake](b)

	state.Register[StatusRequest](b)
	state.Register[StatusPing](b)

	state.Register[LoginStart](b)
	state.Register[LoginAcknowledged](b)

	state.Register[ClientInformation](b)
	state.Register[PluginMessage](b)
	state.Register[AcknowledgeFinishConfiguration](b)
	state.Register[ConfigKeepAlive](b)
	state.Register[ServerboundKnownPacks](b)

	state.Register[ConfirmTeleportation](b)
	state.Register[KeepAliveResponse](b)
	return b
}
