package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

var (
	solarProduction float64
	batteryPercent  float64
	batteryCapacity float64
	appliances      []string
)

var solarCmd = &cobra.Command{
	Use:   "solar",
	Short: "Plan household energy use around solar production",
}

var solarAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Get a management plan for one solar reading",
	Example: `  ecoctl solar analyze --solar 3200 --battery 45
  ecoctl solar analyze --solar 0 --battery 15 --appliance fridge=150 --appliance heater=2000`,
	Args: cobra.NoArgs,
	RunE: runSolarAnalyze,
}

func init() {
	solarAnalyzeCmd.Flags().Float64Var(&solarProduction, "solar", 0, "Current solar production in watts (required)")
	solarAnalyzeCmd.Flags().Float64Var(&batteryPercent, "battery", 0, "Battery charge percentage 0-100 (required)")
	solarAnalyzeCmd.Flags().Float64Var(&batteryCapacity, "capacity", 0, "Battery capacity in Wh (server default when omitted)")
	solarAnalyzeCmd.Flags().StringArrayVar(&appliances, "appliance", nil, "Appliance load as name=watts, repeatable")
	_ = solarAnalyzeCmd.MarkFlagRequired("solar")
	_ = solarAnalyzeCmd.MarkFlagRequired("battery")
}

func runSolarAnalyze(cmd *cobra.Command, args []string) error {
	if solarProduction < 0 {
		return fmt.Errorf("--solar must not be negative")
	}
	if batteryPercent < 0 || batteryPercent > 100 {
		return fmt.Errorf("--battery must be between 0 and 100")
	}
	loads, err := parseAppliances(appliances)
	if err != nil {
		return err
	}
	in := backend.SolarInput{
		SolarProductionW:  solarProduction,
		BatteryPercentage: batteryPercent,
		BatteryCapacityWh: batteryCapacity,
		Appliances:        loads,
	}

	wf := workflow.NewSolar(newClient(),
		workflow.WithInterval(cfg.Client.ProgressInterval),
		workflow.WithLogger(logger),
	)
	defer wf.Close()

	snap, err := analyze(cmd.Context(), cmd.ErrOrStderr(), wf, in)
	if err != nil {
		return err
	}
	printSolar(cmd.OutOrStdout(), *snap.Result)
	return nil
}

// parseAppliances turns name=watts pairs into a load map.
func parseAppliances(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	loads := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, watts, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --appliance %q (want name=watts)", p)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(watts), 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid wattage in --appliance %q", p)
		}
		loads[name] = w
	}
	return loads, nil
}
