// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation, and a fixed set of environment fallbacks overlays the
// file. Resolution order: CLI flags override environment, environment
// overrides the file, the file overrides built-in defaults.
package config
