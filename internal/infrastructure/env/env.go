package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"signup-e2e/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

type EnvService struct {
	appEnv string
	loaded []string
}

// NewEnvService loads dir/.env and then overlays dir/.env.<APP_ENV>. Missing
// files are fine; CI usually provides everything through the environment.
func NewEnvService(dir string) (*EnvService, error) {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	svc := &EnvService{appEnv: appEnv}

	base := filepath.Join(dir, ".env")
	if err := godotenv.Load(base); err == nil {
		svc.loaded = append(svc.loaded, base)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", base, err)
	}

	overlay := filepath.Join(dir, fmt.Sprintf(".env.%s", appEnv))
	if err := godotenv.Overload(overlay); err == nil {
		svc.loaded = append(svc.loaded, overlay)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", overlay, err)
	}

	return svc, nil
}

func (e *EnvService) AppEnv() string {
	return e.appEnv
}

func (e *EnvService) Loaded() []string {
	return append([]string(nil), e.loaded...)
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
