package netmc

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("kasumi/netmc")

var (
	unknownPackets = mustInt64Counter("kasumi.packets.unknown",
		"Number of received frames without a registered packet")
	skippedPackets = mustInt64Counter("kasumi.packets.skipped",
		"Number of received frames skipped because the packet was incomplete")
)

func mustInt64Counter(name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("1"))
	if err != nil {
		panic(err)
	}
	return c
}
