// Package config loads typed configuration structs from environment
// variables (with optional .env file support via godotenv) using
// caarlos0/env struct tags. Every package that needs configuration
// declares its own struct with env/envDefault tags and calls Load once;
// repeated loads of the same type return the cached value.
package config
