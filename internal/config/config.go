package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Kafka struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	ResultsTopic string
	EventsTopic  string
	Group        string
	Workers      int
}

type Postgres struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string
}

type Ledger struct {
	Driver string // postgres | memory | pebble
	Schema string
	Table  string
	// Lease lets a stuck PROCESSING record be taken over after it expires.
	// Zero disables takeover.
	Lease     time.Duration
	PebbleDir string
}

type MasterData struct {
	Driver   string // postgres | file
	File     string
	Schema   string
	CacheCap int
	CacheTTL time.Duration
}

type Defaults struct {
	CustomerCode  string
	SellerCode    int
	WarehouseCode string
}

type ERP struct {
	Driver      string // servicelayer | sandbox
	URL         string
	CompanyDB   string
	User        string
	Password    string
	Timeout     time.Duration
	InsecureTLS bool

	SandboxFirstDocID  int
	SandboxFirstDocNum int
}

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Config struct {
	HTTPAddr       string
	APIKey         string
	Env            string
	LogLevel       string
	MetricsEnabled bool
	BatchWorkers   int

	Pg         Postgres
	Ledger     Ledger
	MasterData MasterData
	Defaults   Defaults
	ERP        ERP
	Kafka      Kafka
	Breaker    Breaker
	Retry      Retry
}

// Load keeps the original API and fatals on error for simplicity in main().
func Load() Config {
	cfg, err := LoadE()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func LoadE() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTPAddr:       envDefault("HTTP_ADDR", ":8080"),
		APIKey:         strings.TrimSpace(os.Getenv("API_KEY")),
		Env:            envDefault("APP_ENV", "development"),
		LogLevel:       envDefault("LOG_LEVEL", "info"),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
		BatchWorkers:   envInt("BATCH_WORKERS", 1),

		Pg: Postgres{
			Host:     strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:     strings.TrimSpace(envDefault("PG_PORT", "5432")),
			DB:       strings.TrimSpace(os.Getenv("PG_DB")),
			User:     strings.TrimSpace(os.Getenv("PG_USER")),
			Password: strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:  strings.TrimSpace(envDefault("PG_SSLMODE", "disable")),
		},

		Ledger: Ledger{
			Driver:    strings.ToLower(envDefault("LEDGER_DRIVER", "postgres")),
			Schema:    envDefault("LEDGER_SCHEMA", "bridge"),
			Table:     envDefault("LEDGER_TABLE", "order_ledger"),
			Lease:     envDurationMS("LEDGER_PROCESSING_LEASE", 0),
			PebbleDir: envDefault("LEDGER_PEBBLE_DIR", "data/ledger"),
		},

		MasterData: MasterData{
			Driver:   strings.ToLower(envDefault("MASTERDATA_DRIVER", "postgres")),
			File:     envDefault("MASTERDATA_FILE", "masterdata.yaml"),
			Schema:   envDefault("MASTERDATA_SCHEMA", "erp"),
			CacheCap: envInt("MASTERDATA_CACHE_SIZE", 1000),
			CacheTTL: envDurationMS("MASTERDATA_CACHE_TTL", 5*time.Minute),
		},

		Defaults: Defaults{
			CustomerCode:  strings.TrimSpace(os.Getenv("DEFAULT_CUSTOMER_CODE")),
			SellerCode:    envInt("DEFAULT_SELLER_CODE", 1),
			WarehouseCode: envDefault("DEFAULT_WAREHOUSE_CODE", "01"),
		},

		ERP: ERP{
			Driver:             strings.ToLower(envDefault("ERP_DRIVER", "servicelayer")),
			URL:                strings.TrimRight(strings.TrimSpace(os.Getenv("ERP_URL")), "/"),
			CompanyDB:          strings.TrimSpace(os.Getenv("ERP_COMPANY_DB")),
			User:               strings.TrimSpace(os.Getenv("ERP_USER")),
			Password:           strings.TrimSpace(os.Getenv("ERP_PASSWORD")),
			Timeout:            envDurationMS("ERP_TIMEOUT", 60*time.Second),
			InsecureTLS:        envBool("ERP_INSECURE_TLS", false),
			SandboxFirstDocID:  envInt("SANDBOX_FIRST_DOC_ID", 501),
			SandboxFirstDocNum: envInt("SANDBOX_FIRST_DOC_NUM", 2001),
		},

		Kafka: Kafka{
			Enabled:      envBool("KAFKA_ENABLED", false),
			Brokers:      splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			Topic:        envDefault("KAFKA_TOPIC", "orders.submissions"),
			ResultsTopic: envDefault("KAFKA_RESULTS_TOPIC", "orders.results"),
			EventsTopic:  strings.TrimSpace(os.Getenv("KAFKA_EVENTS_TOPIC")),
			Group:        envDefault("KAFKA_GROUP", "erp-order-bridge"),
			Workers:      envInt("KAFKA_WORKERS", 4),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 10*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 5),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},
	}

	// Validate required envs and basic sanity.
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NeedsPostgres reports whether any configured component reads Postgres.
func (c Config) NeedsPostgres() bool {
	return c.Ledger.Driver == "postgres" || c.MasterData.Driver == "postgres"
}

func (c *Config) validate() error {
	var missing []string
	req := map[string]string{}

	if c.NeedsPostgres() {
		req["PG_HOST"] = c.Pg.Host
		req["PG_DB"] = c.Pg.DB
		req["PG_USER"] = c.Pg.User
		req["PG_PASSWORD"] = c.Pg.Password
	}
	if c.ERP.Driver == "servicelayer" {
		req["ERP_URL"] = c.ERP.URL
		req["ERP_COMPANY_DB"] = c.ERP.CompanyDB
		req["ERP_USER"] = c.ERP.User
		req["ERP_PASSWORD"] = c.ERP.Password
	}
	if c.Kafka.Enabled {
		req["KAFKA_BROKERS"] = strings.Join(c.Kafka.Brokers, ",")
		req["KAFKA_TOPIC"] = c.Kafka.Topic
		req["KAFKA_GROUP"] = c.Kafka.Group
	}
	req["DEFAULT_CUSTOMER_CODE"] = c.Defaults.CustomerCode

	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &missingEnvError{Keys: missing}
	}

	switch c.Ledger.Driver {
	case "postgres", "memory", "pebble":
	default:
		return fmt.Errorf("unknown LEDGER_DRIVER %q", c.Ledger.Driver)
	}
	switch c.MasterData.Driver {
	case "postgres", "file":
	default:
		return fmt.Errorf("unknown MASTERDATA_DRIVER %q", c.MasterData.Driver)
	}
	switch c.ERP.Driver {
	case "servicelayer", "sandbox":
	default:
		return fmt.Errorf("unknown ERP_DRIVER %q", c.ERP.Driver)
	}

	if c.MasterData.CacheCap < 0 {
		log.Printf("MASTERDATA_CACHE_SIZE is %d, adjusting to 0", c.MasterData.CacheCap)
		c.MasterData.CacheCap = 0
	}
	if c.BatchWorkers < 1 {
		log.Printf("BATCH_WORKERS is %d, adjusting to 1", c.BatchWorkers)
		c.BatchWorkers = 1
	}
	if c.Retry.Attempts < 1 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 1", c.Retry.Attempts)
		c.Retry.Attempts = 1
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
	if c.Ledger.Lease < 0 {
		c.Ledger.Lease = 0
	}
	return nil
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

// DSN builds a proper Postgres URL, safely escaping user/pass and query.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %t: %v", k, v, def, err)
		return def
	}
	return b
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	// If it looks like a duration with units, try ParseDuration first.
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	// Otherwise treat as milliseconds.
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
