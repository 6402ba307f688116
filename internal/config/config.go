package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Studio     Studio     `yaml:"studio"`
	Database   Database   `yaml:"database"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Redis      Redis      `yaml:"redis"`
	RabbitMQ   RabbitMQ   `yaml:"rabbitmq"`
	Signature  Signature  `yaml:"signature"`
	Advisor    Advisor    `yaml:"advisor"`
	Calendar   Calendar   `yaml:"calendar"`
}

type Studio struct {
	Timezone string `yaml:"timezone" env:"STUDIO_TIMEZONE" env-default:"UTC"`
}

type Database struct {
	Host        string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port        int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User        string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	DBName      string `yaml:"dbname" env:"DB_NAME" env-default:"studio"`
	SSLMode     string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"false"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Redis is optional. An empty address disables webhook delivery claims.
type Redis struct {
	Address  string        `yaml:"address" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	ClaimTTL time.Duration `yaml:"claim_ttl" env-default:"10m"`
}

// RabbitMQ is optional. An empty URL makes notifications go to the log only.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"studio.notifications"`
}

type Signature struct {
	ProviderURL    string        `yaml:"provider_url" env:"ESIGN_PROVIDER_URL"`
	APIKey         string        `yaml:"api_key" env:"ESIGN_API_KEY"`
	TemplateID     string        `yaml:"template_id" env:"ESIGN_TEMPLATE_ID"`
	WebhookSecret  string        `yaml:"webhook_secret" env:"ESIGN_WEBHOOK_SECRET"`
	AllowUnsigned  bool          `yaml:"allow_unsigned" env:"ESIGN_ALLOW_UNSIGNED" env-default:"false"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
	ReconcileEvery time.Duration `yaml:"reconcile_every" env-default:"5m"`
	ReconcileAfter time.Duration `yaml:"reconcile_after" env-default:"30m"`
}

type Advisor struct {
	GeminiAPIKey string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string        `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	Timeout      time.Duration `yaml:"timeout" env-default:"3s"`
}

type Calendar struct {
	SourceTimeout   time.Duration `yaml:"source_timeout" env-default:"5s"`
	ExternalTimeout time.Duration `yaml:"external_timeout" env-default:"4s"`
	DayCap          int           `yaml:"day_cap" env-default:"3"`
	// TaskAssignee narrows the task source to one person. Empty shows all.
	TaskAssignee    string        `yaml:"task_assignee" env:"CALENDAR_TASK_ASSIGNEE"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

// Location returns the studio time zone used for calendar-day comparisons.
func (s Studio) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
