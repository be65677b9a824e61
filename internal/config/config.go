package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		Migrate bool `yaml:"migrate"` // correr migraciones al arrancar
	} `yaml:"storage"`

	// Auth agrupa toda la configuración del núcleo de autenticación.
	// El secreto simétrico, nombre de header y prefijo se cargan una sola
	// vez al arrancar y viajan por inyección: nunca hay un singleton mutable.
	Auth struct {
		Token struct {
			Secret     string `yaml:"secret"`      // secreto simétrico compartido (obligatorio)
			Issuer     string `yaml:"issuer"`      // claim "iss" fijo
			Header     string `yaml:"header"`      // default: Authorization
			Prefix     string `yaml:"prefix"`      // default: "Bearer "
			TTLSeconds int    `yaml:"ttl_seconds"` // default: 3600
		} `yaml:"token"`

		Reset struct {
			Secret string `yaml:"secret"` // secreto HS256 para tokens de recuperación
			TTL    string `yaml:"ttl"`    // default: 30m
		} `yaml:"reset"`
	} `yaml:"auth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Redis   struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`

		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`

		Forgot struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"forgot"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Email struct {
		BaseURL        string `yaml:"base_url"`         // base para armar links de reset
		DebugEchoLinks bool   `yaml:"debug_echo_links"` // sólo dev: loguear el link en vez de enviarlo
	} `yaml:"email"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyEnvOverrides()

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Auth.Token.Issuer == "" {
		c.Auth.Token.Issuer = "comandero"
	}
	if c.Auth.Token.Header == "" {
		c.Auth.Token.Header = "Authorization"
	}
	if c.Auth.Token.Prefix == "" {
		c.Auth.Token.Prefix = "Bearer "
	}
	if c.Auth.Token.TTLSeconds == 0 {
		c.Auth.Token.TTLSeconds = 3600
	}
	if c.Auth.Reset.TTL == "" {
		c.Auth.Reset.TTL = "30m"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Forgot.Limit == 0 {
		c.Rate.Forgot.Limit = 5
	}
	if c.Rate.Forgot.Window == "" {
		c.Rate.Forgot.Window = "10m"
	}
	if c.Rate.Redis.Prefix == "" {
		c.Rate.Redis.Prefix = "rl:"
	}

	// validaciones duras
	if c.Auth.Token.Secret == "" {
		return nil, fmt.Errorf("config: auth.token.secret es obligatorio")
	}
	// Un secreto de reset vacío firmaría tokens HS256 con la clave vacía,
	// que cualquiera puede forjar.
	if c.Auth.Reset.Secret == "" {
		return nil, fmt.Errorf("config: auth.reset.secret es obligatorio")
	}

	// validate string durations
	for _, d := range []string{
		c.Server.ReadTimeout, c.Server.WriteTimeout,
		c.Auth.Reset.TTL, c.Rate.Login.Window, c.Rate.Forgot.Window,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return nil, fmt.Errorf("config: duración inválida %q: %w", d, err)
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// applyEnvOverrides permite pisar valores sensibles por variables de entorno,
// para no tener que escribir secretos en el YAML.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("COMANDERO_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("COMANDERO_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("COMANDERO_TOKEN_SECRET"); v != "" {
		c.Auth.Token.Secret = v
	}
	if v := os.Getenv("COMANDERO_RESET_SECRET"); v != "" {
		c.Auth.Reset.Secret = v
	}
	if v := os.Getenv("COMANDERO_TOKEN_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Auth.Token.TTLSeconds = n
		}
	}
	if v := os.Getenv("COMANDERO_SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("COMANDERO_REDIS_ADDR"); v != "" {
		c.Rate.Redis.Addr = v
	}
}

// TokenTTL devuelve el TTL del token como duración.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.Token.TTLSeconds) * time.Second
}

// ResetTTL devuelve el TTL del token de recuperación como duración.
func (c *Config) ResetTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.Reset.TTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// MustDuration parsea una duración ya validada en Load.
func MustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
