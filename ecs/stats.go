package ecs

// RegistryStats summarizes the definitions held by a registry and the schemas
// entities currently reference.
type RegistryStats struct {
	ComponentCount  int `json:"component_count"`
	ControllerCount int `json:"controller_count"`
	ViewCount       int `json:"view_count"`
	MethodCount     int `json:"method_count"`
	SchemaCount     int `json:"schema_count"`

	// LiveCustomSchemas counts custom schemas still referenced by an entity.
	LiveCustomSchemas int `json:"live_custom_schemas"`
	// CustomSchemasCreated counts every custom schema ever created.
	CustomSchemasCreated int `json:"custom_schemas_created"`

	SchemaBreakdown []SchemaStats `json:"schemas"`
}

// SchemaStats describes a single shared schema.
type SchemaStats struct {
	ID              SchemaID `json:"id"`
	Name            string   `json:"name"`
	Instances       int      `json:"instances"`
	ComponentCount  int      `json:"component_count"`
	ControllerCount int      `json:"controller_count"`
	MethodCount     int      `json:"method_count"`
	Size            int      `json:"size"`
	HasView         bool     `json:"has_view"`
}

// CollectStats gathers registry statistics.
func (r *Registry) CollectStats() RegistryStats {
	stats := RegistryStats{
		ComponentCount:       len(r.components),
		ControllerCount:      len(r.controllers),
		ViewCount:            len(r.views),
		MethodCount:          len(r.methods),
		LiveCustomSchemas:    r.customLive,
		CustomSchemasCreated: r.customTotal,
	}
	for _, s := range r.schemas {
		if s == nil {
			continue
		}
		stats.SchemaCount++
		stats.SchemaBreakdown = append(stats.SchemaBreakdown, SchemaStats{
			ID:              s.id,
			Name:            s.name,
			Instances:       s.instances,
			ComponentCount:  s.ComponentCount(),
			ControllerCount: s.ControllerCount(),
			MethodCount:     s.MethodCount(),
			Size:            s.Size(),
			HasView:         s.view != NoView,
		})
	}
	return stats
}
