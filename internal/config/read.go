package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/nDmitry/spacetravelling/internal/entity"
)

const (
	defaultPort      = "8080"
	defaultRedisHost = "redis"
	defaultRedisPort = "6379"
	defaultPageSize  = 2
	defaultSiteTitle = "Space Travelling"
)

// FromEnv reads the configuration from environment variables
func FromEnv() (*entity.Config, error) {
	return Read(os.Getenv)
}

// Read builds the configuration using the given lookup function
func Read(getenv func(string) string) (*entity.Config, error) {
	config := entity.Config{
		Port:           valueOr(getenv("HTTP_SERVER_PORT"), defaultPort),
		APIEndpoint:    strings.TrimRight(getenv("PRISMIC_API_ENDPOINT"), "/"),
		APIAccessToken: getenv("PRISMIC_ACCESS_TOKEN"),
		PageSize:       defaultPageSize,
		SiteTitle:      valueOr(getenv("SITE_TITLE"), defaultSiteTitle),
	}

	config.RedisAddr = fmt.Sprintf("%s:%s",
		valueOr(getenv("REDIS_HOST"), defaultRedisHost),
		valueOr(getenv("REDIS_PORT"), defaultRedisPort),
	)

	if config.APIEndpoint == "" {
		return nil, fmt.Errorf("PRISMIC_API_ENDPOINT is required")
	}

	if _, err := url.ParseRequestURI(config.APIEndpoint); err != nil {
		return nil, fmt.Errorf("could not parse PRISMIC_API_ENDPOINT: %w", err)
	}

	if pageSize := getenv("PAGE_SIZE"); pageSize != "" {
		var err error
		config.PageSize, err = strconv.Atoi(pageSize)

		if err != nil || config.PageSize < 1 || config.PageSize > 100 {
			return nil, fmt.Errorf("PAGE_SIZE must be an integer between 1 and 100")
		}
	}

	config.SiteURL = strings.TrimRight(
		valueOr(getenv("SITE_URL"), "http://localhost:"+config.Port),
		"/",
	)

	return &config, nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
