// Package file provides the TOML configuration file adapter.
//
// Load reads the config file, applies defaults and resolves relative
// directories against the config file's location. Save writes a config
// back, as used by the init command.
package file
