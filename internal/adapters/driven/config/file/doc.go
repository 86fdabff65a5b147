// Package file provides the TOML-backed driven.ConfigStore that holds miner
// settings between runs.
package file
