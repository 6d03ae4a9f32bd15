// Package config holds the options of a single roptool invocation. A
// Config is built once from defaults, an optional YAML file and the
// command line, validated, and then passed by value to the commands.
package config
