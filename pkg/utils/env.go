package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// LoadEnv loads .env.<mode> and then .env from the working directory.
// Variables already present in the environment are never overwritten.
// An error is returned only when neither file could be loaded.
func LoadEnv(mode string) error {
	var files []string
	if mode != "" {
		files = append(files, ".env."+mode)
	}
	files = append(files, ".env")

	var errs []error
	loaded := false
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
			continue
		}
		loaded = true
	}
	if loaded {
		return nil
	}
	return errors.Join(errs...)
}

// GetEnv 获取环境变量，去除首尾空白
func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetStringOrDefault(key, defaultValue string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetIntEnv returns 0 when the variable is unset or not a number.
func GetIntEnv(key string) int64 {
	return cast.ToInt64(GetEnv(key))
}

func GetIntOrDefault(key string, defaultValue int) int {
	v := GetEnv(key)
	if v == "" {
		return defaultValue
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func GetBoolOrDefault(key string, defaultValue bool) bool {
	v := GetEnv(key)
	if v == "" {
		return defaultValue
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return defaultValue
	}
	return b
}

// GetDurationOrDefault accepts Go duration strings ("15s") or a bare number of seconds.
func GetDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return defaultValue
	}
	if n, err := cast.ToInt64E(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return defaultValue
	}
	return d
}
