// Package config provides centralized configuration management for the CFEM
// analytics service and CLI.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), optionally seeded from a .env file
//	2. A YAML configuration file (config.yaml, configs/config.yaml or CFEM_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CFEM_<SECTION>_<KEY>:
//
//	CFEM_SERVER_PORT=8080
//	CFEM_INGESTION_DELIMITER=;
//	CFEM_ANALYTICS_DEFAULT_CAPTURE_RATE=30
//	CFEM_SOURCE_FILE=data/base_cfem_crm.csv
//	CFEM_SOURCE_WATCH=true
//	CFEM_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	delimiter := cfg.Ingestion.DelimiterRune()
package config
