package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"brokergate/internal/broker"
)

type Config struct {
	HTTPAddr     string
	ServiceURL   string
	BrokerKind   string
	Username     string
	Password     string
	ExePath      string
	CallTimeout  time.Duration
	LoginTimeout time.Duration
	LogLevel     string
	LogPretty    bool
	WSOrigin     string
	APIToken     string
}

// Load reads configuration from the environment. Everything has a
// default except credentials, which stay empty unless provided; an
// empty EASYTRADER_URL leaves the gateway running with a disabled
// broker backend.
func Load() (Config, error) {
	var c Config
	c.HTTPAddr = envDefault("HTTP_ADDR", ":8888")
	c.ServiceURL = os.Getenv("EASYTRADER_URL")
	c.BrokerKind = envDefault("BROKER_KIND", "yh")
	if !broker.KindSupported(c.BrokerKind) {
		return c, errors.New("unsupported BROKER_KIND: " + c.BrokerKind)
	}
	c.Username = os.Getenv("BROKER_USERNAME")
	c.Password = os.Getenv("BROKER_PASSWORD")
	c.ExePath = os.Getenv("BROKER_EXE_PATH")

	var err error
	c.CallTimeout, err = durationDefault("CALL_TIMEOUT", 30*time.Second)
	if err != nil {
		return c, err
	}
	c.LoginTimeout, err = durationDefault("LOGIN_TIMEOUT", 60*time.Second)
	if err != nil {
		return c, err
	}

	c.LogLevel = envDefault("LOG_LEVEL", "info")
	pretty := os.Getenv("LOG_PRETTY")
	if pretty != "" {
		b, err := strconv.ParseBool(pretty)
		if err != nil {
			return c, errors.New("invalid LOG_PRETTY: " + pretty)
		}
		c.LogPretty = b
	}
	c.WSOrigin = envDefault("WS_ORIGIN", "*")
	c.APIToken = os.Getenv("API_TOKEN")
	return c, nil
}

// AutoLogin reports whether startup should attempt a broker login.
// Kinds driven by a prepared desktop client ("yh") need no credentials,
// so a configured backend is enough; the rest need both username and
// password.
func (c Config) AutoLogin() bool {
	if c.ServiceURL == "" {
		return false
	}
	if !broker.KindNeedsUserPass(c.BrokerKind) {
		return true
	}
	return c.Username != "" && c.Password != ""
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.New("invalid " + key + ": " + v)
	}
	return d, nil
}
