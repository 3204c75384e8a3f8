package rover_nav

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration that reads "650ms"-style strings or integer
// milliseconds from JSON.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %s", string(b))
	}
	*d = Duration(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

// WheelPins names the H-bridge pins of one wheel.
type WheelPins struct {
	In1    string `json:"in1"`
	In2    string `json:"in2"`
	Enable string `json:"enable"`
}

// SerialConfig describes the serial bridge port.
type SerialConfig struct {
	Path       string   `json:"path"`
	BaudRate   int      `json:"baud_rate"`
	DataBits   int      `json:"data_bits"`
	StopBits   int      `json:"stop_bits"`
	Parity     string   `json:"parity"`
	StaleAfter Duration `json:"stale_after"`
}

// FirmataConfig describes an Arduino running StandardFirmata.
type FirmataConfig struct {
	Port     string    `json:"port"`
	LinePins [3]string `json:"line_pins"`
	Left     WheelPins `json:"left"`
	Right    WheelPins `json:"right"`
}

// GPIOConfig describes rangefinder and wheel pins on the host GPIO header.
type GPIOConfig struct {
	Trigger     string    `json:"trigger"`
	Echo        string    `json:"echo"`
	EchoTimeout Duration  `json:"echo_timeout"`
	PWMHz       int       `json:"pwm_hz"`
	Left        WheelPins `json:"left"`
	Right       WheelPins `json:"right"`
}

// SimConfig describes the simulated track.
type SimConfig struct {
	TrackLengthCM float64 `json:"track_length_cm"`
	ObstacleAtCM  float64 `json:"obstacle_at_cm"`
	ObstacleCM    float64 `json:"obstacle_size_cm"`
	Seed          int64   `json:"seed"`
}

// HardwareConfig selects a backend per external collaborator.
//
// Driver, when set, is used for any of Line, Range or Wheels left empty. A
// firmata board has no rangefinder, so Range then falls back to "none".
type HardwareConfig struct {
	Driver  string        `json:"driver"`
	Line    string        `json:"line"`
	Range   string        `json:"range"`
	Wheels  string        `json:"wheels"`
	Serial  SerialConfig  `json:"serial"`
	Firmata FirmataConfig `json:"firmata"`
	GPIO    GPIOConfig    `json:"gpio"`
	Sim     SimConfig     `json:"sim"`
}

// Resolved returns the per-concern driver names with Driver filled in.
func (h HardwareConfig) Resolved() (line, rng, wheels string) {
	pick := func(v string) string {
		if v == "" {
			return h.Driver
		}
		return v
	}
	rng = pick(h.Range)
	if h.Range == "" && h.Driver == "firmata" {
		rng = "none"
	}
	return pick(h.Line), rng, pick(h.Wheels)
}

func (h HardwareConfig) validate() error {
	line, rng, wheels := h.Resolved()
	if !oneOf(line, "sim", "serial", "firmata") {
		return fmt.Errorf("hardware.line %q: want sim, serial or firmata", line)
	}
	if !oneOf(rng, "sim", "serial", "gpio", "none") {
		return fmt.Errorf("hardware.range %q: want sim, serial, gpio or none", rng)
	}
	if !oneOf(wheels, "sim", "serial", "firmata", "gpio") {
		return fmt.Errorf("hardware.wheels %q: want sim, serial, firmata or gpio", wheels)
	}
	sims := 0
	for _, v := range []string{line, rng, wheels} {
		if v == "sim" {
			sims++
		}
	}
	if sims != 0 && sims != 3 {
		return errors.New("hardware: the simulator drives all collaborators or none")
	}

	var pins []namedPin
	if line == "firmata" {
		for i, p := range h.Firmata.LinePins {
			pins = append(pins, namedPin{fmt.Sprintf("firmata.line_pins[%d]", i), p})
		}
	}
	if wheels == "firmata" {
		pins = append(pins, wheelPinNames("firmata", h.Firmata.Left, h.Firmata.Right)...)
	}
	if rng == "gpio" {
		pins = append(pins, namedPin{"gpio.trigger", h.GPIO.Trigger}, namedPin{"gpio.echo", h.GPIO.Echo})
	}
	if wheels == "gpio" {
		pins = append(pins, wheelPinNames("gpio", h.GPIO.Left, h.GPIO.Right)...)
	}
	for _, p := range pins {
		if strings.TrimSpace(p.pin) == "" {
			return fmt.Errorf("hardware.%s must name a pin", p.name)
		}
	}
	return nil
}

type namedPin struct {
	name string
	pin  string
}

func wheelPinNames(section string, left, right WheelPins) []namedPin {
	var out []namedPin
	for _, w := range []struct {
		side string
		pins WheelPins
	}{{"left", left}, {"right", right}} {
		out = append(out,
			namedPin{section + "." + w.side + ".in1", w.pins.In1},
			namedPin{section + "." + w.side + ".in2", w.pins.In2},
			namedPin{section + "." + w.side + ".enable", w.pins.Enable},
		)
	}
	return out
}

// OutputConfig controls the UDP telemetry side channel.
type OutputConfig struct {
	UDPAddr string `json:"udp_addr"`
}

// LogConfig controls console logging.
type LogConfig struct {
	Enabled bool `json:"enabled"`
}

// AppConfig aggregates all configuration sections.
type AppConfig struct {
	Hz                        float64        `json:"hz"`
	Thresholds                Thresholds     `json:"thresholds"`
	LooseThresholds           Thresholds     `json:"loose_thresholds"`
	Speeds                    SpeedConfig    `json:"speeds"`
	Timing                    TimingConfig   `json:"timing"`
	ObstacleLimitCM           int            `json:"obstacle_limit_cm"`
	PostUTurn                 PostUTurn      `json:"post_uturn"`
	OvertakeRearmsSuppression bool           `json:"overtake_rearms_suppression"`
	Hardware                  HardwareConfig `json:"hardware"`
	Output                    OutputConfig   `json:"output"`
	Viz                       VizConfig      `json:"viz"`
	Log                       LogConfig      `json:"log"`
}

// DefaultConfig returns the calibrated constants for the reference chassis.
func DefaultConfig() AppConfig {
	return AppConfig{
		Hz:              100,
		Thresholds:      Thresholds{Low: 200, High: 1100},
		LooseThresholds: Thresholds{Low: 200, High: 1100},
		Speeds:          SpeedConfig{Cruise: 150, Correction: 130, Maneuver: 160},
		Timing: TimingConfig{
			Turn90:         Duration(650 * time.Millisecond),
			Turn180:        Duration(1300 * time.Millisecond),
			Lateral:        Duration(700 * time.Millisecond),
			PassThrough:    Duration(1600 * time.Millisecond),
			Pause:          Duration(300 * time.Millisecond),
			StartupCreep:   Duration(500 * time.Millisecond),
			PostUTurnCreep: Duration(400 * time.Millisecond),
			PostUTurnDwell: Duration(1000 * time.Millisecond),
			MinLeg:         Duration(19500 * time.Millisecond),
		},
		ObstacleLimitCM: 10,
		PostUTurn:       PostUTurnCreep,
		Hardware: HardwareConfig{
			Driver: "sim",
			Serial: SerialConfig{
				BaudRate:   115200,
				DataBits:   8,
				StopBits:   1,
				Parity:     "N",
				StaleAfter: Duration(250 * time.Millisecond),
			},
			Firmata: FirmataConfig{
				LinePins: [3]string{"A0", "A1", "A2"},
				Left:     WheelPins{In1: "7", In2: "8", Enable: "5"},
				Right:    WheelPins{In1: "9", In2: "11", Enable: "6"},
			},
			GPIO: GPIOConfig{
				Trigger:     "GPIO23",
				Echo:        "GPIO24",
				EchoTimeout: Duration(25 * time.Millisecond),
				PWMHz:       20000,
				Left:        WheelPins{In1: "GPIO5", In2: "GPIO6", Enable: "GPIO12"},
				Right:       WheelPins{In1: "GPIO20", In2: "GPIO21", Enable: "GPIO13"},
			},
			Sim: SimConfig{TrackLengthCM: 520, ObstacleAtCM: 200, ObstacleCM: 12, Seed: 1},
		},
	}
}

// LoadConfig reads the JSON config from disk on top of DefaultConfig and
// validates the result.
func LoadConfig(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects calibration data the loop cannot run with.
func (c AppConfig) Validate() error {
	if c.Hz <= 0 {
		return fmt.Errorf("%w: hz must be > 0", ErrInvalidConfig)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: thresholds: %v", ErrInvalidConfig, err)
	}
	if c.LooseThresholds != (Thresholds{}) {
		if err := c.LooseThresholds.Validate(); err != nil {
			return fmt.Errorf("%w: loose_thresholds: %v", ErrInvalidConfig, err)
		}
	}
	for _, sp := range []struct {
		name string
		v    int
	}{
		{"cruise", c.Speeds.Cruise},
		{"correction", c.Speeds.Correction},
		{"maneuver", c.Speeds.Maneuver},
	} {
		if sp.v <= 0 || sp.v > MaxDuty {
			return fmt.Errorf("%w: speeds.%s must be in 1..%d, got %d", ErrInvalidConfig, sp.name, MaxDuty, sp.v)
		}
	}
	for _, td := range []struct {
		name string
		d    Duration
	}{
		{"turn_90", c.Timing.Turn90},
		{"turn_180", c.Timing.Turn180},
		{"lateral", c.Timing.Lateral},
		{"pass_through", c.Timing.PassThrough},
		{"pause", c.Timing.Pause},
		{"startup_creep", c.Timing.StartupCreep},
		{"post_uturn_creep", c.Timing.PostUTurnCreep},
		{"post_uturn_dwell", c.Timing.PostUTurnDwell},
		{"min_leg", c.Timing.MinLeg},
	} {
		if td.d < 0 {
			return fmt.Errorf("%w: timing.%s must not be negative", ErrInvalidConfig, td.name)
		}
	}
	if c.Timing.Turn90 == 0 || c.Timing.Turn180 == 0 || c.Timing.PassThrough == 0 {
		return fmt.Errorf("%w: turn and pass-through timings must be set", ErrInvalidConfig)
	}
	if c.ObstacleLimitCM <= 0 || Distance(c.ObstacleLimitCM) >= OutOfRange {
		return fmt.Errorf("%w: obstacle_limit_cm must be in 1..%d", ErrInvalidConfig, OutOfRange-1)
	}
	if c.PostUTurn != PostUTurnCreep && c.PostUTurn != PostUTurnDwell {
		return fmt.Errorf("%w: post_uturn must be creep or dwell", ErrInvalidConfig)
	}
	if err := c.Hardware.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// MarshalJSON writes the behaviour name.
func (p PostUTurn) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON allows the post-uturn behaviour to be loaded from a JSON string.
func (p *PostUTurn) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	parsed, err := ParsePostUTurn(*raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
