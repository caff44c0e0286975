// Package config provides centralized configuration management for the
// dashboard. Values are resolved in increasing order of precedence:
//
//  1. Default values (Default)
//  2. A YAML file (config.yaml, configs/config.yaml or --config)
//  3. Environment variables prefixed with DASH_
//
// Environment variables follow the nested struct layout:
//
//	DASH_SERVER_PORT=8501
//	DASH_LOGGING_LEVEL=debug
//	DASH_UPLOAD_MAX_SIZE_MB=50
//	DASH_SESSION_TTL=30m
//
// Command-line flags are applied by the caller after Load returns.
package config
