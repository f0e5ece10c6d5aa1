package env

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"agentql-tools/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

type EnvService struct {
	lookup func(key string) (string, bool)
}

// NewEnvService loads .env and then .env.<APP_ENV> over it. Missing files are
// not an error: in CI the variables come from the real environment.
func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	explicit := appEnv != ""
	if !explicit {
		appEnv = "dev"
	}

	_ = godotenv.Load(".env")

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err != nil && explicit {
		log.Printf("Warning: could not load %s: %v", envFile, err)
	}

	return &EnvService{lookup: os.LookupEnv}
}

// NewStaticEnvService serves values from a map instead of the process environment.
func NewStaticEnvService(values map[string]string) *EnvService {
	return &EnvService{lookup: func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}}
}

// Lookup matches the os.LookupEnv signature so it can be handed to resolvers.
func (e *EnvService) Lookup(key string) (string, bool) {
	return e.lookup(key)
}

func (e *EnvService) Get(key string) string {
	val, _ := e.lookup(key)
	return val
}

func (e *EnvService) MustGet(key string) string {
	val := e.Get(key)
	if val == "" {
		log.Fatalf("ENV %s is missing", key)
	}
	return val
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	val := strings.TrimSpace(e.Get(key))
	if val == "" {
		return defaultValue
	}
	return val
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDuration accepts Go duration strings ("90s") or plain seconds ("90").
func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := strings.TrimSpace(e.Get(key))
	if val == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
