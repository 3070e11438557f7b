package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rmax-ai/smoglight/pkg/scenario"
	"github.com/rmax-ai/smoglight/pkg/sim"
)

func main() {
	var (
		scenarioFile string
		jsonOutput   bool
		outputFile   string
	)

	flag.StringVar(&scenarioFile, "scenario", "", "Path to scenario JSON file")
	flag.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	flag.StringVar(&outputFile, "out", "", "Write output to file instead of stdout")
	flag.Parse()

	var scn scenario.Scenario

	if scenarioFile != "" {
		data, err := os.ReadFile(scenarioFile)
		if err != nil {
			log.Fatalf("Failed to read scenario file: %v", err)
		}
		if err := json.Unmarshal(data, &scn); err != nil {
			log.Fatalf("Failed to parse scenario file: %v", err)
		}
	} else {
		// Default Scenario
		fmt.Fprintln(os.Stderr, "No scenario file provided, running default demo scenario...")
		scn = scenario.Scenario{
			Name:        "Default Demo",
			Description: "One full signal cycle with the demo fleet",
			Seed:        1,
			Legs: []scenario.Leg{
				{Phase: sim.PhaseRed, Ticks: 30},
				{Phase: sim.PhaseGreen, Ticks: 30},
			},
			Invariants: []scenario.Invariant{
				{Metric: "peak_co2", Condition: ">", Value: 50},
				{Metric: "final_o2", Condition: ">", Value: 0},
			},
		}
	}

	result, err := scenario.RunScenario(scn)
	if err != nil {
		log.Fatalf("Scenario failed: %v", err)
	}

	writeReport(result, jsonOutput, outputFile)

	if !result.Success {
		os.Exit(1)
	}
}

func writeReport(res scenario.Result, jsonFmt bool, filePath string) {
	var output []byte
	var err error

	if jsonFmt {
		output, err = json.MarshalIndent(res, "", "  ")
	} else {
		var buf bytes.Buffer
		buf.WriteString(fmt.Sprintf("\n--- Scenario Report: %s ---\n", res.ScenarioName))
		buf.WriteString(fmt.Sprintf("Seed: %d | Ticks: %d\n", res.Seed, res.Ticks))
		buf.WriteString(fmt.Sprintf("Final: CO2 %.2f | CO %.2f | O2 %.2f\n", res.Final.CO2, res.Final.CO, res.Final.O2))
		buf.WriteString(fmt.Sprintf("Peaks: CO2 %.2f | CO %.2f | Min O2 %.2f\n", res.PeakCO2, res.PeakCO, res.MinO2))

		if len(res.Invariants) > 0 {
			buf.WriteString("\nInvariants:\n")
			for _, inv := range res.Invariants {
				status := "FAIL"
				if inv.Passed {
					status = "PASS"
				}
				buf.WriteString(fmt.Sprintf("[%s] %s: Expected %s, Got %s\n", status, inv.Metric, inv.Expected, inv.Actual))
			}
		}
		output = buf.Bytes()
	}

	if err != nil {
		log.Fatalf("Failed to marshal report: %v", err)
	}

	if filePath != "" {
		if err := os.WriteFile(filePath, output, 0644); err != nil {
			log.Fatalf("Failed to write report to %s: %v", filePath, err)
		}
		fmt.Printf("Report written to %s\n", filePath)
	} else {
		fmt.Println(string(output))
	}
}
