package rover_nav

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rover.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"hz": 50,
		"timing": {"min_leg": "20s", "turn_90": 700},
		"post_uturn": "dwell",
		"hardware": {"driver": "serial", "serial": {"path": "/dev/ttyUSB0"}}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 50.0, cfg.Hz)
	assert.Equal(t, 20*time.Second, cfg.Timing.MinLeg.D())
	assert.Equal(t, 700*time.Millisecond, cfg.Timing.Turn90.D())
	assert.Equal(t, def.Timing.Turn180, cfg.Timing.Turn180, "unset fields keep their defaults")
	assert.Equal(t, PostUTurnDwell, cfg.PostUTurn)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Hardware.Serial.Path)
	assert.Equal(t, 115200, cfg.Hardware.Serial.BaudRate)

	line, rng, wheels := cfg.Hardware.Resolved()
	assert.Equal(t, []string{"serial", "serial", "serial"}, []string{line, rng, wheels})
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `{"hz": `))
		assert.Error(t, err)
	})

	t.Run("unknown post uturn", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `{"post_uturn": "hover"}`))
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `{"timing": {"pause": "soon"}}`))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"zero hz", func(c *AppConfig) { c.Hz = 0 }},
		{"inverted thresholds", func(c *AppConfig) { c.Thresholds = Thresholds{Low: 900, High: 100} }},
		{"inverted loose thresholds", func(c *AppConfig) { c.LooseThresholds = Thresholds{Low: 900, High: 100} }},
		{"zero cruise", func(c *AppConfig) { c.Speeds.Cruise = 0 }},
		{"speed above duty range", func(c *AppConfig) { c.Speeds.Maneuver = 300 }},
		{"negative pause", func(c *AppConfig) { c.Timing.Pause = Duration(-time.Second) }},
		{"zero turn", func(c *AppConfig) { c.Timing.Turn90 = 0 }},
		{"obstacle limit at sentinel", func(c *AppConfig) { c.ObstacleLimitCM = int(OutOfRange) }},
		{"unknown post uturn", func(c *AppConfig) { c.PostUTurn = 0 }},
		{"unknown line driver", func(c *AppConfig) { c.Hardware.Line = "lidar" }},
		{"partial simulator", func(c *AppConfig) { c.Hardware.Line = "serial" }},
		{"firmata line pin missing", func(c *AppConfig) {
			c.Hardware.Driver = "firmata"
			c.Hardware.Firmata.LinePins[1] = ""
		}},
		{"firmata wheel pin missing", func(c *AppConfig) {
			c.Hardware.Driver = "firmata"
			c.Hardware.Firmata.Right.Enable = " "
		}},
		{"gpio echo pin missing", func(c *AppConfig) {
			c.Hardware.Driver = "serial"
			c.Hardware.Range = "gpio"
			c.Hardware.GPIO.Echo = ""
		}},
		{"gpio wheel pin missing", func(c *AppConfig) {
			c.Hardware.Driver = "serial"
			c.Hardware.Wheels = "gpio"
			c.Hardware.GPIO.Left.In2 = ""
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateAllowsEmptyLooseWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LooseThresholds = Thresholds{}
	assert.NoError(t, cfg.Validate())
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1.5s"`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.D())

	require.NoError(t, json.Unmarshal([]byte(`250`), &d))
	assert.Equal(t, 250*time.Millisecond, d.D())

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	b, err := json.Marshal(Duration(650 * time.Millisecond))
	require.NoError(t, err)
	assert.JSONEq(t, `"650ms"`, string(b))
}

func TestPostUTurnJSON(t *testing.T) {
	b, err := json.Marshal(PostUTurnDwell)
	require.NoError(t, err)
	assert.JSONEq(t, `"dwell"`, string(b))

	p := PostUTurnDwell
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Equal(t, PostUTurnDwell, p, "null leaves the value alone")
}

func TestExampleConfigsLoad(t *testing.T) {
	for _, path := range []string{"../config.sim.json", "../config.serial.json"} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadConfig(path)
			assert.NoError(t, err)
		})
	}
}

func TestDriverOverrideServesEveryConcern(t *testing.T) {
	for _, tc := range []struct {
		driver string
		want   [3]string
	}{
		{"sim", [3]string{"sim", "sim", "sim"}},
		{"serial", [3]string{"serial", "serial", "serial"}},
		{"firmata", [3]string{"firmata", "none", "firmata"}},
	} {
		t.Run(tc.driver, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Hardware.Driver = tc.driver
			cfg.Hardware.Line, cfg.Hardware.Range, cfg.Hardware.Wheels = "", "", ""
			require.NoError(t, cfg.Validate())

			line, rng, wheels := cfg.Hardware.Resolved()
			assert.Equal(t, tc.want, [3]string{line, rng, wheels})
		})
	}
}

func TestFirmataDriverKeepsExplicitRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hardware.Driver = "firmata"
	cfg.Hardware.Range = "gpio"
	require.NoError(t, cfg.Validate())
	_, rng, _ := cfg.Hardware.Resolved()
	assert.Equal(t, "gpio", rng)
}

func TestLoadConfigLoneFirmataDriver(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{"hardware": {"driver": "firmata"}}`))
	require.NoError(t, err)
	_, rng, _ := cfg.Hardware.Resolved()
	assert.Equal(t, "none", rng)
}

func TestLoadConfigRejectsShortLinePins(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"hardware": {"driver": "firmata", "firmata": {"line_pins": ["A3"]}}}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "firmata.line_pins[1]")
}

func TestUnusedPinsAreNotChecked(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hardware.Firmata.LinePins = [3]string{}
	cfg.Hardware.GPIO = GPIOConfig{}
	assert.NoError(t, cfg.Validate(), "the simulator needs no pins")
}

func TestValidateReportsFirstInvalidField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Speeds.Cruise = 0
	cfg.Speeds.Maneuver = 0
	for i := 0; i < 20; i++ {
		assert.ErrorContains(t, cfg.Validate(), "speeds.cruise")
	}

	cfg = DefaultConfig()
	cfg.Timing.Pause = Duration(-time.Second)
	cfg.Timing.MinLeg = Duration(-time.Second)
	for i := 0; i < 20; i++ {
		assert.ErrorContains(t, cfg.Validate(), "timing.pause")
	}
}
