//go:build js && wasm

// Command wasm exposes the profile simulator to the browser via WebAssembly.
// After loading, it registers two global JavaScript functions:
//
//	runProfile(inputJSON)     -> logJSON | {error, kind}
//	profileSchedule(planJSON) -> scheduleJSON | {error, kind}
//
// runProfile takes a SimulationInput and returns the SimulationLog, as the CLI
// sim command does. profileSchedule takes a plan document (the format read by
// the CLI schedule command) and returns the stage end times.
//
// Failures never throw into JavaScript. They come back as an object whose
// error field holds the message and whose kind field is one of "decode",
// "plan" or "input", so pages can tell a malformed document from a rejected one.
package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/cxd309/accel-profile/internal/planfile"
	"github.com/cxd309/accel-profile/internal/profile"
	"github.com/cxd309/accel-profile/internal/sim"
)

func main() {
	js.Global().Set("runProfile", js.FuncOf(runProfile))
	js.Global().Set("profileSchedule", js.FuncOf(profileSchedule))
	select {}
}

func failure(kind string, err error) map[string]any {
	return map[string]any{"error": err.Error(), "kind": kind}
}

func runProfile(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failure(sim.ErrKindDecode, errors.New("no input provided"))
	}

	result, err := sim.RunJSON(args[0].String())
	if err != nil {
		return failure(sim.ErrorKind(err), err)
	}
	return result
}

func profileSchedule(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failure(sim.ErrKindDecode, errors.New("no plan provided"))
	}

	doc, err := planfile.Parse([]byte(args[0].String()), planfile.FormatJSON)
	if err != nil {
		kind := sim.ErrKindDecode
		if errors.Is(err, profile.ErrEmptyPlan) {
			kind = sim.ErrKindPlan
		}
		return failure(kind, err)
	}

	out, err := json.Marshal(profile.BuildSchedule(doc.Stages))
	if err != nil {
		return failure(sim.ErrKindInput, err)
	}
	return string(out)
}
