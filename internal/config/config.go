package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      `yaml:"app"`
	Logger   `yaml:"log"`
	Database `yaml:"database"`
	Broker   `yaml:"broker"`
	Topics   `yaml:"topics"`
	Status   `yaml:"status"`
}

type App struct {
	ServiceName string `yaml:"service_name" env:"APP_SERVICE_NAME" env-default:"rfid-bridge"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

type Logger struct {
	Level      string   `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	FormatJSON bool     `yaml:"format_json" env:"LOG_FORMAT_JSON"`
	Rotation   Rotation `yaml:"rotation"`
}

type Rotation struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSize    int    `yaml:"max_size" env:"LOG_MAX_SIZE" env-default:"10"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"max_age" env:"LOG_MAX_AGE" env-default:"7"`
}

type Database struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     uint16 `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"4"`
	MinConns int32  `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"1"`
}

type Broker struct {
	URL            string        `yaml:"url" env:"BROKER_URL"`
	ClientID       string        `yaml:"client_id" env:"BROKER_CLIENT_ID" env-default:"rfid-bridge"`
	Username       string        `yaml:"username" env:"BROKER_USERNAME"`
	Password       string        `yaml:"password" env:"BROKER_PASSWORD"`
	QoS            int           `yaml:"qos" env:"BROKER_QOS" env-default:"1"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"BROKER_CONNECT_TIMEOUT" env-default:"10s"`
}

type Topics struct {
	Scan     string `yaml:"scan" env:"TOPIC_SCAN" env-default:"rfid/scanner/uid"`
	Response string `yaml:"response" env:"TOPIC_RESPONSE" env-default:"rfid/scanner/response"`
	Alert    string `yaml:"alert" env:"TOPIC_ALERT" env-default:"rfid/scanner/uid/not_found"`
	// AlertKeys picks the alert payload convention: "legacy" emits
	// {"uid","hora"}, "plain" emits {"identifier","time"}.
	AlertKeys string `yaml:"alert_keys" env:"TOPIC_ALERT_KEYS" env-default:"legacy"`
}

type Status struct {
	AvailableLabel string `yaml:"available_label" env:"STATUS_AVAILABLE_LABEL" env-default:"Disponível"`
	LoanedLabel    string `yaml:"loaned_label" env:"STATUS_LOANED_LABEL" env-default:"Emprestado"`
}

func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	return cfg
}

func LoadConfig() (*Config, error) {
	var cfg Config
	path := fetchConfigPath()

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustPrintConfig(cfg *Config) {
	if err := PrintConfig(cfg); err != nil {
		panic(err)
	}
}

func PrintConfig(cfg *Config) error {
	redacted := *cfg
	redacted.Database.Password = "***"
	redacted.Broker.Password = "***"

	data, err := yaml.Marshal(redacted)
	if err != nil {
		return err
	}

	println(string(data))

	return nil
}

func fetchConfigPath() string {
	var result string

	flag.StringVar(&result, "config", "", "Path to config file")
	flag.Parse()

	if result == "" {
		result = os.Getenv("CONFIG_PATH")
	}

	return result
}
