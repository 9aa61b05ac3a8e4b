// Package config loads the command-line configuration: the backend address
// and credentials from a .env file and the environment, and solver profiles
// from YAML.
package config
