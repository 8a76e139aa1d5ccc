// Package log writes registry definitions and entity layouts as structured
// zerolog events.
package log

import (
	"github.com/rs/zerolog"

	"github.com/plus3/entcore/ecs"
)

func loadComponentIntoArrayLogger(kind *ecs.ComponentKind, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(kind.ID))
	dictLogger = dictLogger.Str("component_name", kind.Name)
	dictLogger = dictLogger.Str("component_kind", kind.Tag.String())
	if kind.Stored() {
		dictLogger = dictLogger.Int("component_size", kind.Size())
	}
	return arrayLogger.Dict(dictLogger)
}

func loadComponentsToEvent(zeroLoggerEvent *zerolog.Event, r *ecs.Registry) *zerolog.Event {
	zeroLoggerEvent.Int("total_components", r.ComponentCount())
	arrayLogger := zerolog.Arr()
	for i := 0; i < r.ComponentCount(); i++ {
		arrayLogger = loadComponentIntoArrayLogger(r.Component(ecs.ComponentID(i)), arrayLogger)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

func loadControllersToEvent(zeroLoggerEvent *zerolog.Event, r *ecs.Registry) *zerolog.Event {
	zeroLoggerEvent.Int("total_controllers", r.ControllerCount())
	arrayLogger := zerolog.Arr()
	for i := 0; i < r.ControllerCount(); i++ {
		arrayLogger = arrayLogger.Str(r.ControllerName(ecs.ControllerID(i)))
	}
	return zeroLoggerEvent.Array("controllers", arrayLogger)
}

func loadSchemasToEvent(zeroLoggerEvent *zerolog.Event, r *ecs.Registry) *zerolog.Event {
	arrayLogger := zerolog.Arr()
	total := 0
	for i := 0; i < r.SchemaCount(); i++ {
		s, ok := r.SchemaSafe(ecs.SchemaID(i))
		if !ok {
			continue
		}
		total++
		dictLogger := zerolog.Dict().
			Int("schema_id", int(s.ID())).
			Str("schema_name", s.Name()).
			Int("instances", s.Instances()).
			Int("size", s.Size())
		arrayLogger = arrayLogger.Dict(dictLogger)
	}
	zeroLoggerEvent.Int("total_schemas", total)
	return zeroLoggerEvent.Array("schemas", arrayLogger)
}

// Components logs all component kinds of the registry.
func Components(logger *zerolog.Logger, r *ecs.Registry, level zerolog.Level) {
	loadComponentsToEvent(logger.WithLevel(level), r).Send()
}

// Controllers logs all controllers of the registry.
func Controllers(logger *zerolog.Logger, r *ecs.Registry, level zerolog.Level) {
	loadControllersToEvent(logger.WithLevel(level), r).Send()
}

// Registry logs every component, controller and shared schema.
func Registry(logger *zerolog.Logger, r *ecs.Registry, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, r)
	zeroLoggerEvent = loadControllersToEvent(zeroLoggerEvent, r)
	zeroLoggerEvent = loadSchemasToEvent(zeroLoggerEvent, r)
	zeroLoggerEvent.Send()
}

// Entity logs the schema and component layout of an entity.
func Entity(logger *zerolog.Logger, level zerolog.Level, e *ecs.Entity) {
	zeroLoggerEvent := logger.WithLevel(level)
	s := e.Schema()
	if s == nil {
		zeroLoggerEvent.Bool("released", true).Send()
		return
	}
	r := s.Registry()
	arrayLogger := zerolog.Arr()
	for _, id := range s.ComponentIDs() {
		kind := r.Component(id)
		dictLogger := zerolog.Dict().
			Int("component_id", int(id)).
			Str("component_name", kind.Name).
			Int("offset", s.ComponentOffset(id)).
			Hex("value", e.Components().Sub(s.ComponentOffset(id), kind.Size()).Bytes())
		arrayLogger = arrayLogger.Dict(dictLogger)
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Int("schema_id", int(s.ID()))
	zeroLoggerEvent.Str("schema_name", s.Name())
	zeroLoggerEvent.Bool("custom", s.IsCustom())
	zeroLoggerEvent.Bool("enabled", e.IsEnabled())
	zeroLoggerEvent.Bool("visible", e.IsVisible())
	zeroLoggerEvent.Bool("expired", e.IsExpired())
	zeroLoggerEvent.Send()
}

// CreateSchemaLogger creates a sub logger with the entry {"schema": name}.
func CreateSchemaLogger(logger *zerolog.Logger, schemaName string) *zerolog.Logger {
	newLogger := logger.With().Str("schema", schemaName).Logger()
	return &newLogger
}
