package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"line-rover/rover_nav"
	"line-rover/rover_nav/hardware"
	"line-rover/rover_nav/sim"
)

func main() {
	var configPath string
	var serialPort string
	var samples int
	var interval time.Duration
	flag.StringVar(&configPath, "config", "", "Path to JSON config (built-in defaults when empty).")
	flag.StringVar(&serialPort, "serial-port", "", "Override serial device of the bridge or firmata board.")
	flag.IntVar(&samples, "samples", 200, "Readings to take on each surface.")
	flag.DurationVar(&interval, "interval", 10*time.Millisecond, "Delay between readings.")
	flag.Parse()

	cfg := rover_nav.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = rover_nav.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config %q: %v", configPath, err)
		}
	}
	if serialPort != "" {
		cfg.Hardware.Serial.Path = serialPort
		cfg.Hardware.Firmata.Port = serialPort
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := rover_nav.RealClock{}
	hw, err := hardware.Open(ctx, cfg.Hardware, clock)
	if err != nil {
		log.Fatalf("open hardware: %v", err)
	}
	defer hw.Close()

	stdin := bufio.NewReader(os.Stdin)
	surface := func(name string, pose sim.Pose) rover_nav.SurfaceStats {
		if hw.World != nil {
			hw.World.SetPose(pose)
		} else {
			fmt.Printf("Place all three sensors over the %s and press Enter.\n", name)
			_, _ = stdin.ReadString('\n')
		}
		got, err := collect(hw.Line, samples, interval, clock)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		stats, err := rover_nav.SummarizeSamples(got)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		for i, s := range stats {
			fmt.Printf("%-5s %-6s mean=%7.1f sd=%6.1f min=%5.0f max=%5.0f\n",
				name, []string{"left", "middle", "right"}[i], s.Mean, s.StdDev, s.Min, s.Max)
		}
		return stats
	}

	// On the simulator the T-marker is dark under all three sensors.
	line := surface("line", sim.Pose{X: -sim.SensorAheadCM})
	floor := surface("floor", sim.Pose{X: 100, Y: 20})

	th, err := rover_nav.SuggestThresholds(line, floor)
	if err != nil {
		log.Fatal(err)
	}
	out, err := json.MarshalIndent(map[string]rover_nav.Thresholds{"thresholds": th}, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}

// collect takes n readings, retrying while the backend has no sample yet.
func collect(line rover_nav.LineSensors, n int, interval time.Duration, clock rover_nav.Clock) ([]rover_nav.SensorSample, error) {
	out := make([]rover_nav.SensorSample, 0, n)
	failures := 0
	for len(out) < n {
		s, err := line.ReadLine()
		if err != nil {
			failures++
			if failures > n {
				return out, fmt.Errorf("line sensors: %w", err)
			}
		} else {
			out = append(out, s)
		}
		clock.Sleep(interval)
	}
	return out, nil
}
