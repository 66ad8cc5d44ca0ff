package combat

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/samdwyer/skirmish/internal/telemetry"
)

// instruments are the combat metrics. They fall back to no-ops when the
// meter rejects an instrument. A nil provider means the global one.
type instruments struct {
	battles metric.Int64Counter
	turns   metric.Int64Counter
	damage  metric.Int64Histogram
}

func newInstruments(provider metric.MeterProvider) instruments {
	meter := telemetry.Meter("combat")
	if provider != nil {
		meter = telemetry.MeterFrom(provider, "combat")
	}
	inst := instruments{
		battles: noop.Int64Counter{},
		turns:   noop.Int64Counter{},
		damage:  noop.Int64Histogram{},
	}

	if c, err := meter.Int64Counter("combat.battles",
		metric.WithDescription("Battles finished, by outcome")); err != nil {
		otel.Handle(err)
	} else {
		inst.battles = c
	}
	if c, err := meter.Int64Counter("combat.turns",
		metric.WithDescription("Actions resolved, by side and action")); err != nil {
		otel.Handle(err)
	} else {
		inst.turns = c
	}
	if h, err := meter.Int64Histogram("combat.damage",
		metric.WithDescription("HP removed per resolved attack"),
		metric.WithUnit("{hp}")); err != nil {
		otel.Handle(err)
	} else {
		inst.damage = h
	}
	return inst
}
