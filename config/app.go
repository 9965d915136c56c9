package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/DrkBotBase/delivery"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset in test and dev only.
const DevJWTSecret = "change-me"

type AppConfig struct {
	Env  string // test, dev or prod
	Port string

	JWTSecret string

	// Location used to decide what "today" means for deliveries and stats.
	Timezone *time.Location

	// Zero keeps share tokens readable forever.
	ShareTokenTTL       time.Duration
	HistoryDefaultLimit int

	// Empty disables the distributed owner lock.
	RedisAddress string

	PhoneRegion       string
	CitySuffix        string
	RestaurantName    string
	RestaurantAddress string

	LogLevel string
}

func NewAppConfig() AppConfig {
	// a missing .env file is fine, the environment may be set by the runtime
	_ = godotenv.Load()

	loc, err := time.LoadLocation(get("APP_TIMEZONE", "America/Bogota"))
	if err != nil {
		loc = time.UTC
	}

	ttl, err := time.ParseDuration(get("SHARE_TOKEN_TTL", "0s"))
	if err != nil {
		ttl = 0
	}

	limit, err := strconv.Atoi(get("HISTORY_DEFAULT_LIMIT", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	env := os.Getenv("APP_ENV")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" && (env == "test" || env == "dev") {
		secret = DevJWTSecret
	}

	conf := AppConfig{
		Env:                 env,
		Port:                get("PORT", "8080"),
		JWTSecret:           secret,
		Timezone:            loc,
		ShareTokenTTL:       ttl,
		HistoryDefaultLimit: limit,
		RedisAddress:        os.Getenv("REDIS_ADDRESS"),
		PhoneRegion:         get("PHONE_REGION", "CO"),
		CitySuffix:          get("CITY_SUFFIX", "Riomar, Barranquilla, Atlántico"),
		RestaurantName:      get("RESTAURANT_NAME", "Restaurante"),
		RestaurantAddress:   get("RESTAURANT_ADDRESS", "Eduardo Santos, Barranquilla, Atlántico"),
		LogLevel:            get("LOG_LEVEL", "info"),
	}

	return conf
}

// Validate reports settings the service must not run with. Outside test and
// dev the JWT secret has to be set and differ from DevJWTSecret.
func (c AppConfig) Validate() error {
	if c.IsTest() || c.Env == "dev" {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == DevJWTSecret {
		return delivery.NewError(delivery.EINVALID, "JWT_SECRET must be set outside test and dev")
	}
	return nil
}

func (c AppConfig) IsTest() bool {
	return c.Env == "test"
}

func (c AppConfig) IsProd() bool {
	return c.Env == "prod"
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
