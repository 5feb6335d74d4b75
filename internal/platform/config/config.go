package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"offsetledger/pkg/domain"
)

// Config is the full process configuration, built once in main.
type Config struct {
	Server     Server
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Ledger     LedgerConfig
	Settlement SettlementConfig
	LogLevel   string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the ledger store. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL            string
	MaxConns       int32
	MinConns       int32
	ConnectRetries int
	RetryDelay     time.Duration
}

// RedisConfig backs the Idempotency-Key cache. An empty URL disables it.
type RedisConfig struct {
	URL            string
	PoolSize       int
	MinIdleConns   int
	DialTimeout    time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdempotencyTTL time.Duration
}

// KafkaConfig configures the audit outbox relay. No brokers means audit events
// stay in the local store.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
	RelayBatch    int
}

// LedgerConfig holds the registry rules that are deployment choices.
type LedgerConfig struct {
	AdminPrincipals     []domain.Principal
	Categories          []domain.Category
	MinVintageYear      domain.VintageYear
	AllowReverification bool
	TxTimeout           time.Duration
}

// SettlementConfig picks the payment collaborator. An empty URL selects the
// in-memory wallet funded from DevBalances.
type SettlementConfig struct {
	URL         string
	Timeout     time.Duration
	DevBalances map[domain.Principal]uint64
}

const (
	defaultAddr           = ":8080"
	defaultMinVintageYear = 2020
	defaultAuditTopic     = "ledger.audit"
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}

	jwtSigningKey := getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cfg := Config{
		Server: Server{
			Addr:            p.str("LEDGER_ADDR", defaultAddr),
			JWTSigningKey:   jwtSigningKey,
			JWTIssuer:       p.str("JWT_ISSUER", "offsetledger"),
			JWTAudience:     p.str("JWT_AUDIENCE", "offsetledger-api"),
			ShutdownTimeout: p.duration("LEDGER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:            strings.TrimSpace(getenv("DATABASE_URL")),
			MaxConns:       int32(p.integer("DATABASE_MAX_CONNS", 10)),
			MinConns:       int32(p.integer("DATABASE_MIN_CONNS", 1)),
			ConnectRetries: p.integer("DATABASE_CONNECT_RETRIES", 30),
			RetryDelay:     p.duration("DATABASE_RETRY_DELAY", 2*time.Second),
		},
		Redis: RedisConfig{
			URL:            strings.TrimSpace(getenv("REDIS_URL")),
			PoolSize:       p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns:   p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:    p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:    p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:   p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			IdempotencyTTL: p.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getenv("KAFKA_BROKERS")),
			AuditTopic:    p.str("KAFKA_AUDIT_TOPIC", defaultAuditTopic),
			RelayInterval: p.duration("OUTBOX_RELAY_INTERVAL", time.Second),
			RelayBatch:    p.integer("OUTBOX_RELAY_BATCH", 100),
		},
		Ledger: LedgerConfig{
			AllowReverification: p.boolean("LEDGER_ALLOW_REVERIFICATION", false),
			TxTimeout:           p.duration("LEDGER_TX_TIMEOUT", 5*time.Second),
		},
		Settlement: SettlementConfig{
			URL:     strings.TrimSpace(getenv("SETTLEMENT_URL")),
			Timeout: p.duration("SETTLEMENT_TIMEOUT", 10*time.Second),
		},
		LogLevel: p.str("LOG_LEVEL", "info"),
	}

	for _, raw := range splitList(getenv("LEDGER_ADMIN_PRINCIPALS")) {
		admin, err := domain.ParsePrincipal(raw)
		if err != nil {
			p.fail("LEDGER_ADMIN_PRINCIPALS", err)
			continue
		}
		cfg.Ledger.AdminPrincipals = append(cfg.Ledger.AdminPrincipals, admin)
	}
	for _, raw := range splitList(getenv("LEDGER_CATEGORIES")) {
		cfg.Ledger.Categories = append(cfg.Ledger.Categories, domain.Category(raw))
	}

	minVintage := p.integer("LEDGER_MIN_VINTAGE_YEAR", defaultMinVintageYear)
	if minVintage < 1000 || minVintage > 9999 {
		p.fail("LEDGER_MIN_VINTAGE_YEAR", fmt.Errorf("must be a four-digit year, got %d", minVintage))
	}
	cfg.Ledger.MinVintageYear = domain.VintageYear(minVintage) //nolint:gosec // range checked above

	balances, err := parseBalances(getenv("SETTLEMENT_DEV_BALANCES"))
	if err != nil {
		p.fail("SETTLEMENT_DEV_BALANCES", err)
	}
	cfg.Settlement.DevBalances = balances

	if p.err != nil {
		return Config{}, p.err
	}
	return cfg, nil
}

// parser records the first malformed variable and keeps going with defaults,
// so FromEnv reports one error instead of failing at the first lookup.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config %s: %w", key, err)
	}
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *parser) boolean(key string, def bool) bool {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBalances reads "alice:1000,bob:250".
func parseBalances(raw string) (map[domain.Principal]uint64, error) {
	out := make(map[domain.Principal]uint64)
	for _, entry := range splitList(raw) {
		name, amount, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("entry %q: expected principal:amount", entry)
		}
		p, err := domain.ParsePrincipal(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry, err)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(amount), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry, err)
		}
		out[p] = v
	}
	return out, nil
}
