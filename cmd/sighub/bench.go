package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/sigslot-dev/sigslot/pkg/sigslot"
)

// benchProfile describes one throughput run. Slots is capped by the size
// of the slot table below: every connected slot needs its own entry point,
// since slots sharing one would dedup down to a single connection.
type benchProfile struct {
	Name  string
	Slots int
	Emits int
}

var benchProfiles = map[string]benchProfile{
	"fast": {
		Name:  "fast",
		Slots: 2,
		Emits: 100_000,
	},
	"standard": {
		Name:  "standard",
		Slots: 4,
		Emits: 1_000_000,
	},
	"stress": {
		Name:  "stress",
		Slots: 8,
		Emits: 5_000_000,
	},
}

// benchSink accumulates every payload delivered to any slot.
var benchSink atomic.Uint64

// benchSlotTable holds distinct function literals so each connect
// registers a distinct slot.
var benchSlotTable = [...]sigslot.Slot[int]{
	func(v int) { benchSink.Add(uint64(v)) },
	func(v int) { benchSink.Add(uint64(v)) },
	func(v int) { benchSink.Add(uint64(v)) },
	func(v int) { benchSink.Add(uint64(v)) },
	func(v int) { benchSink.Add(uint64(v)) },
	func(v int) { benchSink.Add(uint64(v)) },
	func(v int) { benchSink.Add(uint64(v)) },
	func(v int) { benchSink.Add(uint64(v)) },
}

type benchResult struct {
	Profile      string  `json:"profile"`
	Slots        int     `json:"slots"`
	Emits        int     `json:"emits"`
	Invocations  uint64  `json:"invocations"`
	DurationMS   float64 `json:"duration_ms"`
	EmitsPerSec  float64 `json:"emits_per_sec"`
	NanosPerEmit float64 `json:"nanos_per_emit"`
}

func benchCmd() *cobra.Command {
	var (
		profileName string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure in-process emit throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, ok := benchProfiles[profileName]
			if !ok {
				return fmt.Errorf("unknown profile %q (have: fast, standard, stress)", profileName)
			}

			result := runBench(profile)

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Printf("profile:   %s\n", result.Profile)
			fmt.Printf("slots:     %d\n", result.Slots)
			fmt.Printf("emits:     %d\n", result.Emits)
			fmt.Printf("calls:     %d\n", result.Invocations)
			fmt.Printf("duration:  %.1f ms\n", result.DurationMS)
			fmt.Printf("rate:      %.0f emits/s (%.0f ns/emit)\n", result.EmitsPerSec, result.NanosPerEmit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "standard", "bench profile: fast, standard, stress")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")

	return cmd
}

func runBench(profile benchProfile) benchResult {
	benchSink.Store(0)

	sig := sigslot.New[int](sigslot.WithName("bench"))
	var calls atomic.Uint64
	for i := 0; i < profile.Slots && i < len(benchSlotTable); i++ {
		sig.Connect(benchSlotTable[i])
	}
	sig.ConnectBound(func(ctx any, v int) {
		ctx.(*atomic.Uint64).Add(1)
	}, &calls)

	start := time.Now()
	for i := 0; i < profile.Emits; i++ {
		sig.Emit(1)
	}
	elapsed := time.Since(start)

	return benchResult{
		Profile:      profile.Name,
		Slots:        sig.Len(),
		Emits:        profile.Emits,
		Invocations:  benchSink.Load() + calls.Load(),
		DurationMS:   float64(elapsed.Microseconds()) / 1000,
		EmitsPerSec:  float64(profile.Emits) / elapsed.Seconds(),
		NanosPerEmit: float64(elapsed.Nanoseconds()) / float64(profile.Emits),
	}
}
