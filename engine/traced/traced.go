// Package traced records an OpenTelemetry span around every extraction.
package traced

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/model"
)

const instrumentationName = "github.com/iklobato/pdftable"

type observableEngine struct {
	name   string
	engine engine.Engine
}

// New wraps e; name identifies the engine in span names.
func New(name string, e engine.Engine) engine.Engine {
	return &observableEngine{
		name:   name,
		engine: e,
	}
}

func (p *observableEngine) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "extract "+p.name)
	defer span.End()

	span.SetAttributes(
		attribute.String("document.format", input.Format.Key()),
		attribute.String("extraction.engine", p.name),
	)

	tables, err := p.engine.Extract(ctx, input, options)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("extraction.tables", len(tables)))

	return tables, nil
}
