// Package config loads layered configuration with Viper.
//
// Sources are applied in order and later sources override earlier ones for
// overlapping keys. The default chain mirrors a typical web service layout:
//
//	appsettings.json
//	appsettings.<Environment>.json
//	appsettings.test.json
//	.env (optional, loaded into the process environment with godotenv)
//	process environment variables
//
// Every file source is optional by default: a missing file is skipped, a
// present but malformed file is an error.
//
// # Usage
//
//	v, err := config.Load(config.WithDir("testdata"), config.WithEnvironment("Staging"))
//	port := v.GetInt("server.port")
package config
