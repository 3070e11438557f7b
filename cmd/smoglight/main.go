package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rmax-ai/smoglight/pkg/client"
	"github.com/rmax-ai/smoglight/pkg/session"
	"github.com/rmax-ai/smoglight/pkg/sim"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usage = `Usage:
  smoglight state
  smoglight phase <red|green|toggle>
  smoglight vehicles <count>
  smoglight run <on|off>
  smoglight step [dt]
  smoglight reset`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	api := client.NewClient(os.Getenv("SMOGLIGHT_API_URL"))
	ctx := context.Background()

	var (
		reading session.Reading
		err     error
	)

	switch os.Args[1] {
	case "state":
		reading, err = api.GetState(ctx)

	case "phase":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(1)
		}
		switch os.Args[2] {
		case "red", "green":
			reading, err = api.SetPhase(ctx, sim.Phase(os.Args[2]))
		case "toggle":
			reading, err = api.TogglePhase(ctx)
		default:
			fmt.Println(usage)
			os.Exit(1)
		}

	case "vehicles":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(1)
		}
		count, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			fmt.Printf("Invalid vehicle count: %v\n", convErr)
			os.Exit(1)
		}
		reading, err = api.SetVehicles(ctx, count)

	case "run":
		if len(os.Args) < 3 || (os.Args[2] != "on" && os.Args[2] != "off") {
			fmt.Println(usage)
			os.Exit(1)
		}
		reading, err = api.SetRunning(ctx, os.Args[2] == "on")

	case "step":
		dt := 1.0
		if len(os.Args) > 2 {
			parsed, convErr := strconv.ParseFloat(os.Args[2], 64)
			if convErr != nil {
				fmt.Printf("Invalid dt: %v\n", convErr)
				os.Exit(1)
			}
			dt = parsed
		}
		reading, err = api.Step(ctx, dt)

	case "reset":
		reading, err = api.Reset(ctx)

	default:
		fmt.Println(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error contacting daemon: %v\n", err)
		fmt.Println("Is smoglight-d running?")
		os.Exit(1)
	}

	fmt.Printf("Phase: %s | Vehicles: %d | Tick: %d\n", reading.Phase, reading.Vehicles, reading.Tick)
	fmt.Printf("CO2: %.2f | CO: %.2f | Fresh O2: %.2f\n", reading.State.CO2, reading.State.CO, reading.State.O2)
}
