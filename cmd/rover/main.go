package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"line-rover/rover_nav"
	"line-rover/rover_nav/hardware"
)

func main() {
	var configPath string
	var driver string
	var serialPort string
	var telemetryAddr string
	var postUTurn string
	var logTicks bool
	flag.StringVar(&configPath, "config", "", "Path to JSON config (built-in defaults when empty).")
	flag.StringVar(&driver, "driver", "", "Override hardware driver for all collaborators (sim, serial, firmata; firmata runs without a rangefinder).")
	flag.StringVar(&serialPort, "serial-port", "", "Override serial device of the bridge or firmata board.")
	flag.StringVar(&telemetryAddr, "telemetry-addr", "", "Send per-tick CSV telemetry to this UDP addr (host:port).")
	flag.StringVar(&postUTurn, "post-uturn", "", "Override post-U-turn behaviour (creep or dwell).")
	flag.BoolVar(&logTicks, "log", false, "Print one status line per tick.")
	flag.Parse()

	cfg := rover_nav.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = rover_nav.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config %q: %v", configPath, err)
		}
	}

	if driver != "" {
		cfg.Hardware.Driver = driver
		cfg.Hardware.Line, cfg.Hardware.Range, cfg.Hardware.Wheels = "", "", ""
	}
	if serialPort != "" {
		cfg.Hardware.Serial.Path = serialPort
		cfg.Hardware.Firmata.Port = serialPort
	}
	if telemetryAddr != "" {
		cfg.Output.UDPAddr = telemetryAddr
	}
	if postUTurn != "" {
		p, err := rover_nav.ParsePostUTurn(postUTurn)
		if err != nil {
			log.Fatalf("invalid post-uturn %q: %v", postUTurn, err)
		}
		cfg.PostUTurn = p
	}
	if logTicks {
		cfg.Log.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := rover_nav.RealClock{}
	hw, err := hardware.Open(ctx, cfg.Hardware, clock)
	if err != nil {
		log.Fatalf("open hardware: %v", err)
	}
	defer func() {
		if err := hw.Close(); err != nil {
			log.Printf("close hardware: %v", err)
		}
	}()

	sender, err := rover_nav.NewTelemetrySender(cfg.Output.UDPAddr)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		_ = sender.Close()
	}()
	viz, err := rover_nav.StartViz(cfg.Viz)
	if err != nil {
		log.Fatalf("viz: %v", err)
	}

	robot := rover_nav.NewRobot(cfg, hw.Hardware, clock)
	robot.SetTelemetry(sender, viz)

	if err := robot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Print(err)
	}
}
