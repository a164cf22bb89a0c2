// Package config provides 12-factor configuration for the scr library and command.
//
// Configuration is loaded from environment variables with defaults, and may be
// overlaid with a YAML file. CLI flags override both.
//
// Configuration Sections:
//   - HTTP: transport settings (user agent, timeout, redirects, body limit, rate limit)
//   - Fetch: default scheme prepended to host+path inputs
//   - Download: file retrieval settings
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	client := httpclient.NewClient(cfg.HTTP.ClientConfig())
//
// Environment Variables:
//   - SCR_USER_AGENT, SCR_HTTP_TIMEOUT, SCR_HTTP_MAX_REDIRECTS
//   - SCR_HTTP_MAX_BODY_BYTES, SCR_HTTP_RATE_LIMIT
//   - SCR_SCHEME, SCR_DOWNLOAD_CREATE_DIRS
//   - LOG_LEVEL, LOG_DEV
package config
