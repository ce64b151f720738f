package kasumi

import (
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("kasumi")
