package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/plus3/entcore/ecs"
)

type Report struct {
	// Configuration
	Duration     time.Duration `json:"duration"`
	Entities     int           `json:"entities"`
	Attributes   int           `json:"attributes"`
	MutationRate float64       `json:"mutation_rate"`

	// Results
	TotalUpdates   int64               `json:"total_updates"`
	TotalTime      time.Duration       `json:"total_time"`
	UpdateTime     Stats               `json:"update_time"`
	Scheduler      *ecs.SchedulerStats `json:"scheduler"`
	Registry       ecs.RegistryStats   `json:"registry"`
	GCPauseMetrics bool                `json:"-"`
	MemStatsStart  runtime.MemStats    `json:"-"`
	MemStatsEnd    runtime.MemStats    `json:"-"`
}

type Stats struct {
	Min     time.Duration   `json:"min"`
	Max     time.Duration   `json:"max"`
	Avg     time.Duration   `json:"avg"`
	Samples []time.Duration `json:"-"`
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// WriteJSON writes the report as an indented JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal report")
	}
	if _, err := w.Write(append(raw, '\n')); err != nil {
		return eris.Wrap(err, "write report")
	}
	return nil
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Attribute Components:** {{.Attributes}}
- **Mutation Rate:** {{.MutationRate}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
- **Entities Removed:** {{.Scheduler.EntitiesRemoved}}
- **Commands Applied:** {{.Scheduler.CommandsApplied}}
- **Final Entity Count:** {{.Scheduler.EntityCount}}

## Schemas
- **Shared Schemas:** {{.Registry.SchemaCount}}
- **Custom Schemas Created:** {{.Registry.CustomSchemasCreated}}
- **Custom Schemas Live At End:** {{.Registry.LiveCustomSchemas}}
{{range .Registry.SchemaBreakdown}}  - {{.Name}}: {{.Instances}} instances, {{.Size}} bytes, {{.ComponentCount}} components
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return eris.Wrap(err, "parse report template")
	}

	return tmpl.Execute(w, r)
}
