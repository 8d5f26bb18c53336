package config

import (
	"flag"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fsdevblog/tinylink/internal/identity"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultCertFilePath  = "certs/cert.pem"
	defaultKeyFilePath   = "certs/key.pem"
	defaultDotEnvFile    = ".env"
)

// Config настройки приложения.
//
// Приоритет источников: переменные окружения, затем флаги, затем YAML файл, затем значения по умолчанию.
// Источник с более высоким приоритетом переопределяет только непустые значения.
type Config struct {
	// Адрес, на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS" yaml:"server_address"`
	// DSN PostgreSQL. Если задан, ссылки хранятся в PostgreSQL
	DatabaseDSN string `env:"DATABASE_DSN" yaml:"database_dsn"`
	// Путь к файлу SQLite (драйвер с cgo)
	SQLitePath string `env:"SQLITE_PATH" yaml:"sqlite_path"`
	// libsql://, wss:// или путь к локальному файлу (pure Go sqlite)
	LibSQLURL string `env:"LIBSQL_URL" yaml:"libsql_url"`
	// Файл снимка хранилища в памяти
	FileStoragePath string `env:"FILE_STORAGE_PATH" yaml:"file_storage_path"`

	EnableHTTPS  bool   `env:"ENABLE_HTTPS" yaml:"enable_https"`
	CertFilePath string `env:"CERT_FILE"    yaml:"cert_file"`
	KeyFilePath  string `env:"KEY_FILE"     yaml:"key_file"`

	// Секрет для подписи токенов личности. Пустой секрет включает токены без подписи
	VisitorJWTSecret   string `env:"VISITOR_JWT_SECRET" yaml:"visitor_jwt_secret"`
	IdentityCookieName string `env:"IDENTITY_COOKIE"    yaml:"identity_cookie"`

	LogLevel   string `env:"LOG_LEVEL" yaml:"log_level"`
	ConfigPath string `env:"CONFIG"    yaml:"-"`
}

// LoadConfig собирает конфигурацию из .env файла, окружения, флагов args и YAML файла.
//
// Параметры:
//   - args: аргументы командной строки без имени программы
//
// Возвращает:
//   - *Config: итоговая конфигурация
//   - error: ошибка разбора любого из источников
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(defaultDotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env file")
	}

	var envConfig Config
	if err := env.Parse(&envConfig); err != nil {
		return nil, errors.Wrap(err, "parse ENV config")
	}

	flagsConfig, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	var fileConfig Config
	if path := firstNonZero(envConfig.ConfigPath, flagsConfig.ConfigPath); path != "" {
		if fileErr := loadFile(path, &fileConfig); fileErr != nil {
			return nil, fileErr
		}
		fileConfig.ConfigPath = path
	}

	return mergeConfig(&envConfig, flagsConfig, &fileConfig, defaults()), nil
}

// MustLoadConfig аналогичен LoadConfig для os.Args, но паникует при ошибке.
func MustLoadConfig() *Config {
	c, err := LoadConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return c
}

func defaults() *Config {
	return &Config{
		ServerAddress:      defaultServerAddress,
		CertFilePath:       defaultCertFilePath,
		KeyFilePath:        defaultKeyFilePath,
		IdentityCookieName: identity.DefaultCookieName,
	}
}

// parseFlags парсит флаги командной строки. Значения флагов по умолчанию пустые,
// чтобы при слиянии отличать незаданный флаг.
func parseFlags(args []string) (*Config, error) {
	var c Config
	fs := flag.NewFlagSet("tinylink", flag.ContinueOnError)

	fs.StringVar(&c.ServerAddress, "a", "", "Адрес сервера (по умолчанию "+defaultServerAddress+")")
	fs.StringVar(&c.DatabaseDSN, "d", "", "DSN PostgreSQL")
	fs.StringVar(&c.SQLitePath, "s", "", "Путь к файлу SQLite")
	fs.StringVar(&c.LibSQLURL, "l", "", "URL libsql или путь к локальному файлу")
	fs.StringVar(&c.FileStoragePath, "f", "", "Файл снимка хранилища в памяти")
	fs.BoolVar(&c.EnableHTTPS, "https", false, "Включить HTTPS")
	fs.StringVar(&c.CertFilePath, "cert", "", "Путь к сертификату (по умолчанию "+defaultCertFilePath+")")
	fs.StringVar(&c.KeyFilePath, "key", "", "Путь к приватному ключу (по умолчанию "+defaultKeyFilePath+")")
	fs.StringVar(&c.VisitorJWTSecret, "j", "", "Секрет подписи токенов личности")
	fs.StringVar(&c.LogLevel, "log-level", "", "Уровень логирования")
	fs.StringVar(&c.ConfigPath, "c", "", "Путь к YAML файлу конфигурации")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}
	return &c, nil
}

func loadFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file `%s`", path)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file `%s`", path)
	}
	return nil
}

// mergeConfig сливает источники, первый непустой выигрывает.
func mergeConfig(layers ...*Config) *Config {
	pick := func(get func(*Config) string) string {
		vals := make([]string, len(layers))
		for i, l := range layers {
			vals[i] = get(l)
		}
		return firstNonZero(vals...)
	}

	var enableHTTPS bool
	for _, l := range layers {
		enableHTTPS = enableHTTPS || l.EnableHTTPS
	}

	return &Config{
		ServerAddress:      pick(func(c *Config) string { return c.ServerAddress }),
		DatabaseDSN:        pick(func(c *Config) string { return c.DatabaseDSN }),
		SQLitePath:         pick(func(c *Config) string { return c.SQLitePath }),
		LibSQLURL:          pick(func(c *Config) string { return c.LibSQLURL }),
		FileStoragePath:    pick(func(c *Config) string { return c.FileStoragePath }),
		EnableHTTPS:        enableHTTPS,
		CertFilePath:       pick(func(c *Config) string { return c.CertFilePath }),
		KeyFilePath:        pick(func(c *Config) string { return c.KeyFilePath }),
		VisitorJWTSecret:   pick(func(c *Config) string { return c.VisitorJWTSecret }),
		IdentityCookieName: pick(func(c *Config) string { return c.IdentityCookieName }),
		LogLevel:           pick(func(c *Config) string { return c.LogLevel }),
		ConfigPath:         pick(func(c *Config) string { return c.ConfigPath }),
	}
}

func firstNonZero[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
