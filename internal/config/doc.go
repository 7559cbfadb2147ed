// Package config assembles the settings for a conformance run from four
// layers: built-in defaults, an optional TOML file, CBSCHECK_* environment
// variables, and finally command-line flags applied by the CLI. Later
// layers win, and a layer only touches the keys it actually defines.
package config
