package ecs

// UpdateFrame is the state the Scheduler passes to controllers on each tick.
type UpdateFrame struct {
	DeltaTime float64
	Tick      int64
	Commands  *Commands
	Entities  *EntityList
	Registry  *Registry
}

func newUpdateFrame(dt float64, tick int64, registry *Registry, entities *EntityList) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Tick:      tick,
		Commands:  newCommands(),
		Entities:  entities,
		Registry:  registry,
	}
}

// FrameOf extracts the UpdateFrame from controller state. It returns nil when
// state is something else.
func FrameOf(state any) *UpdateFrame {
	frame, _ := state.(*UpdateFrame)
	return frame
}
