package cfg

import (
	"flag"
	"math"
	"reflect"
	"strings"
	"testing"
)

// validBase returns a Config with all fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:          60,
		ShutdownBudgetSeconds: 90,
		APIPort:               8080,
		APIToken:              "test-token-123",
		KafkaBrokers:          "localhost:9092",
		KafkaTopic:            "beacon.notifications",
		RunIntervalMinutes:    1440,
		RunWorkers:            4,
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.KafkaTopic != "beacon.notifications" {
		t.Errorf("KafkaTopic = %q, want %q", c.KafkaTopic, "beacon.notifications")
	}
	if c.RunIntervalMinutes != 1440 {
		t.Errorf("RunIntervalMinutes = %d, want 1440", c.RunIntervalMinutes)
	}
	if c.RunWorkers != 4 {
		t.Errorf("RunWorkers = %d, want 4", c.RunWorkers)
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-drain-seconds", "30",
		"-shutdown-budget-seconds", "120",
		"-http-port", "9090",
		"-api-token", "tok-override",
		"-database-url", "postgres://localhost/beacon",
		"-redis-url", "redis://localhost:6379",
		"-kafka-brokers", "k1:9092,k2:9092",
		"-kafka-topic", "alerts.tasks",
		"-run-interval-minutes", "60",
		"-run-workers", "8",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.DrainSeconds != 30 {
		t.Errorf("DrainSeconds = %d, want 30", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 120 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 120", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", c.APIPort)
	}
	if c.APIToken != "tok-override" {
		t.Errorf("APIToken = %q, want %q", c.APIToken, "tok-override")
	}
	if c.DatabaseURL != "postgres://localhost/beacon" {
		t.Errorf("DatabaseURL = %q", c.DatabaseURL)
	}
	if c.RedisURL != "redis://localhost:6379" {
		t.Errorf("RedisURL = %q", c.RedisURL)
	}
	if c.KafkaBrokers != "k1:9092,k2:9092" {
		t.Errorf("KafkaBrokers = %q", c.KafkaBrokers)
	}
	if c.KafkaTopic != "alerts.tasks" {
		t.Errorf("KafkaTopic = %q", c.KafkaTopic)
	}
	if c.RunIntervalMinutes != 60 {
		t.Errorf("RunIntervalMinutes = %d, want 60", c.RunIntervalMinutes)
	}
	if c.RunWorkers != 8 {
		t.Errorf("RunWorkers = %d, want 8", c.RunWorkers)
	}
}

func TestBrokers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "localhost:9092", []string{"localhost:9092"}},
		{"multiple", "k1:9092,k2:9092", []string{"k1:9092", "k2:9092"}},
		{"spaces trimmed", " k1:9092 , k2:9092 ", []string{"k1:9092", "k2:9092"}},
		{"empty segments dropped", "k1:9092,,", []string{"k1:9092"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Config{KafkaBrokers: tt.in}
			if got := c.Brokers(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Brokers(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		errSubstr []string // substrings that must appear in error message
	}{
		{
			name:    "defaults are valid",
			cfg:     validBase(),
			wantErr: false,
		},
		{
			name: "minimum valid values",
			cfg: Config{
				DrainSeconds: 1, ShutdownBudgetSeconds: 2, APIPort: 1, RunWorkers: 1,
			},
			wantErr: false,
		},
		{
			name: "maximum valid values",
			cfg: Config{
				DrainSeconds: 299, ShutdownBudgetSeconds: 300, APIPort: 65535,
				RunIntervalMinutes: 10080, RunWorkers: 32,
			},
			wantErr: false,
		},
		// DrainSeconds boundaries
		{
			name:      "drain zero",
			cfg:       Config{DrainSeconds: 0, ShutdownBudgetSeconds: 90, APIPort: 8080, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "drain above max",
			cfg:       Config{DrainSeconds: 301, ShutdownBudgetSeconds: 302, APIPort: 8080, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		// ShutdownBudgetSeconds boundaries
		{
			name:      "budget zero",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 0, APIPort: 8080, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"SHUTDOWN_BUDGET_SECONDS"},
		},
		// Cross-field: budget vs drain
		{
			name:      "budget equals drain",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 60, APIPort: 8080, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		{
			name:      "budget less than drain",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 30, APIPort: 8080, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		// APIPort boundaries
		{
			name:      "port zero",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 0, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name:      "port above max",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 65536, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		// Run scheduling
		{
			name:      "negative run interval",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, RunIntervalMinutes: -1, RunWorkers: 4},
			wantErr:   true,
			errSubstr: []string{"RUN_INTERVAL_MINUTES"},
		},
		{
			name:    "zero run interval disables scheduler",
			cfg:     Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, RunIntervalMinutes: 0, RunWorkers: 4},
			wantErr: false,
		},
		{
			name:      "zero workers",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, RunWorkers: 0},
			wantErr:   true,
			errSubstr: []string{"RUN_WORKERS"},
		},
		{
			name:      "too many workers",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, RunWorkers: 33},
			wantErr:   true,
			errSubstr: []string{"RUN_WORKERS"},
		},
		// Kafka cross-field
		{
			name: "brokers without topic",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, RunWorkers: 4,
				KafkaBrokers: "localhost:9092", KafkaTopic: "",
			},
			wantErr:   true,
			errSubstr: []string{"KAFKA_TOPIC"},
		},
		{
			name: "topic without brokers is fine",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, RunWorkers: 4,
				KafkaTopic: "beacon.notifications",
			},
			wantErr: false,
		},
		// Error accumulation: all fields invalid
		{
			name:      "all fields invalid",
			cfg:       Config{DrainSeconds: 0, ShutdownBudgetSeconds: 0, APIPort: 0, RunIntervalMinutes: -1, RunWorkers: 0},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT", "RUN_INTERVAL_MINUTES", "RUN_WORKERS"},
		},
		// Extreme values
		{
			name:      "extreme negative values",
			cfg:       Config{DrainSeconds: math.MinInt32, ShutdownBudgetSeconds: math.MinInt32, APIPort: math.MinInt32, RunWorkers: math.MinInt32},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT", "RUN_WORKERS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				errMsg := err.Error()
				for _, sub := range tt.errSubstr {
					if !strings.Contains(errMsg, sub) {
						t.Errorf("error %q does not contain %q", errMsg, sub)
					}
				}
			}
		})
	}
}

func FuzzValidate(f *testing.F) {
	// Seeds: defaults, boundaries, extremes
	seeds := []struct {
		drain, budget, port, interval, workers int
		brokers, topic                         string
	}{
		{60, 90, 8080, 1440, 4, "localhost:9092", "beacon.notifications"},
		{1, 2, 1, 0, 1, "", ""},
		{299, 300, 65535, 10080, 32, "k1:9092,k2:9092", "t"},
		{0, 0, 0, -1, 0, "", ""},
		{-1, -1, -1, -1, -1, "", ""},
		{300, 300, 65535, 0, 4, "", ""},
		{301, 302, 65536, 0, 33, "b", ""},
		{150, 100, 8080, 60, 4, "", "t"},
		{math.MinInt32, math.MinInt32, math.MinInt32, math.MinInt32, math.MinInt32, "", ""},
		{math.MaxInt32, math.MaxInt32, math.MaxInt32, math.MaxInt32, math.MaxInt32, "", ""},
	}
	for _, s := range seeds {
		f.Add(s.drain, s.budget, s.port, s.interval, s.workers, s.brokers, s.topic)
	}

	f.Fuzz(func(t *testing.T, drain, budget, port, interval, workers int, brokers, topic string) {
		c := Config{
			DrainSeconds:          drain,
			ShutdownBudgetSeconds: budget,
			APIPort:               port,
			RunIntervalMinutes:    interval,
			RunWorkers:            workers,
			KafkaBrokers:          brokers,
			KafkaTopic:            topic,
		}
		err := c.Validate()

		drainOK := drain >= 1 && drain <= 300
		budgetOK := budget >= 1 && budget <= 300
		portOK := port >= 1 && port <= 65535
		crossOK := budget > drain
		intervalOK := interval >= 0
		workersOK := workers >= 1 && workers <= 32
		kafkaOK := brokers == "" || topic != ""

		allValid := drainOK && budgetOK && portOK && crossOK && intervalOK && workersOK && kafkaOK

		if allValid && err != nil {
			t.Errorf("expected no error for valid config %+v, got: %v", c, err)
		}
		if !allValid && err == nil {
			t.Errorf("expected error for invalid config %+v, got nil", c)
		}
	})
}
