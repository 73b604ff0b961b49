package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. QUICKPAY_DB_HOST.
const EnvPrefix = "QUICKPAY"

type Config struct {
	Eth     Eth
	DB      DB
	API     API
	LLM     LLM
	Auth    Auth
	Payment Payment
	Proc    Proc
	Log     Log
}

type Eth struct {
	NodeURL string
	// SyncPause is the pause between node sync checks.
	SyncPause time.Duration
	// RegistryAddress is the username registry contract.
	RegistryAddress string
	// QuickPayAddress is the payment contract.
	QuickPayAddress string
}

type DB struct {
	DBName   string
	Host     string
	Port     uint16
	User     string
	Password string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type API struct {
	Addr            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LLM struct {
	// An empty APIKey disables the remote parser and the assistant.
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Auth struct {
	Secret   string
	TokenTTL time.Duration
}

type Payment struct {
	// NativeSymbol is the symbol balances are reported in.
	NativeSymbol     string
	SupportedSymbols []string
	ReceiptTimeout   time.Duration
	ReceiptPause     time.Duration
}

type Proc struct {
	UpdateLastBlockPause    time.Duration
	UpdateTransactionsPause time.Duration
	Confirmations           uint64
	SessionPrunePause       time.Duration
	SessionMaxIdle          time.Duration
}

type Log struct {
	Level  string
	Format string // text|json
}

func NewConfig() *Config {
	return &Config{
		Eth: Eth{
			NodeURL:         "http://localhost:8545",
			SyncPause:       5 * time.Second,
			RegistryAddress: "0xAAEaDf29058BCe2F82F1218Ed901d9Da07f0000b",
			QuickPayAddress: "0x73161053AA73563F78a5CEEBcA9457451eb3Fc85",
		},
		DB: DB{
			DBName:          "quickpay",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		API: API{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLM{
			BaseURL: "https://api.groq.com/openai/v1/",
			Model:   "llama3-70b-8192",
			Timeout: 8 * time.Second,
		},
		Auth: Auth{
			TokenTTL: 24 * time.Hour,
		},
		Payment: Payment{
			NativeSymbol:     "MON",
			SupportedSymbols: []string{"ETH", "MON"},
			ReceiptTimeout:   60 * time.Second,
			ReceiptPause:     time.Second,
		},
		Proc: Proc{
			UpdateLastBlockPause:    15 * time.Second,
			UpdateTransactionsPause: 30 * time.Second,
			Confirmations:           3,
			SessionPrunePause:       time.Minute,
			SessionMaxIdle:          30 * time.Minute,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the JSON configuration file at path on top of the defaults.
// A missing path keeps the defaults; environment variables override both.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	v := viper.New()
	setDefaults(v, cfg)

	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret must be set")
	}
	if c.Payment.NativeSymbol == "" {
		return errors.New("payment.nativeSymbol must be set")
	}

	pauses := map[string]time.Duration{
		"eth.syncPause":                c.Eth.SyncPause,
		"payment.receiptPause":         c.Payment.ReceiptPause,
		"proc.updateLastBlockPause":    c.Proc.UpdateLastBlockPause,
		"proc.updateTransactionsPause": c.Proc.UpdateTransactionsPause,
		"proc.sessionPrunePause":       c.Proc.SessionPrunePause,
	}
	for key, pause := range pauses {
		if pause <= 0 {
			return errors.Errorf("%s must be positive", key)
		}
	}
	return nil
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("eth.nodeURL", cfg.Eth.NodeURL)
	v.SetDefault("eth.syncPause", cfg.Eth.SyncPause)
	v.SetDefault("eth.registryAddress", cfg.Eth.RegistryAddress)
	v.SetDefault("eth.quickPayAddress", cfg.Eth.QuickPayAddress)

	v.SetDefault("db.dbName", cfg.DB.DBName)
	v.SetDefault("db.host", cfg.DB.Host)
	v.SetDefault("db.port", cfg.DB.Port)
	v.SetDefault("db.user", cfg.DB.User)
	v.SetDefault("db.password", cfg.DB.Password)
	v.SetDefault("db.sslMode", cfg.DB.SSLMode)
	v.SetDefault("db.maxOpenConns", cfg.DB.MaxOpenConns)
	v.SetDefault("db.maxIdleConns", cfg.DB.MaxIdleConns)
	v.SetDefault("db.connMaxLifetime", cfg.DB.ConnMaxLifetime)

	v.SetDefault("api.addr", cfg.API.Addr)
	v.SetDefault("api.allowedOrigins", cfg.API.AllowedOrigins)
	v.SetDefault("api.readTimeout", cfg.API.ReadTimeout)
	v.SetDefault("api.writeTimeout", cfg.API.WriteTimeout)
	v.SetDefault("api.shutdownTimeout", cfg.API.ShutdownTimeout)

	v.SetDefault("llm.apiKey", cfg.LLM.APIKey)
	v.SetDefault("llm.baseURL", cfg.LLM.BaseURL)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)

	v.SetDefault("auth.secret", cfg.Auth.Secret)
	v.SetDefault("auth.tokenTTL", cfg.Auth.TokenTTL)

	v.SetDefault("payment.nativeSymbol", cfg.Payment.NativeSymbol)
	v.SetDefault("payment.supportedSymbols", cfg.Payment.SupportedSymbols)
	v.SetDefault("payment.receiptTimeout", cfg.Payment.ReceiptTimeout)
	v.SetDefault("payment.receiptPause", cfg.Payment.ReceiptPause)

	v.SetDefault("proc.updateLastBlockPause", cfg.Proc.UpdateLastBlockPause)
	v.SetDefault("proc.updateTransactionsPause", cfg.Proc.UpdateTransactionsPause)
	v.SetDefault("proc.confirmations", cfg.Proc.Confirmations)
	v.SetDefault("proc.sessionPrunePause", cfg.Proc.SessionPrunePause)
	v.SetDefault("proc.sessionMaxIdle", cfg.Proc.SessionMaxIdle)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
