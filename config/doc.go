// Package config handles loading and parsing of configuration from YAML files,
// an optional .env file and environment variables. It defines the application
// configuration structure including server settings, dashboard presentation,
// logging and the ordered list of monitored service groups.
package config
