// Package config loads typed configuration structs from the environment.
//
// It combines github.com/joho/godotenv, which seeds the process environment
// from an optional .env file, with github.com/caarlos0/env/v11, which maps
// environment variables onto struct fields through `env` and `envDefault`
// tags. Each struct type is parsed once and cached for the life of the
// process:
//
//	var cfg sessionguard.Config
//	config.MustLoad(&cfg)
//
// Tests that mutate the environment between loads call Reset first.
package config
