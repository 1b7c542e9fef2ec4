package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/robodoc-one/gateway/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. Durations are carried as plain integers (minutes for the
// token lifetime, seconds for the relay timeout), matching the flag surface.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr          string `json:"endpoint_addr"`
	DatabaseDSN           string `json:"database_dsn"`
	SecretKey             string `json:"secret_key"`
	TokenValidityMinutes  int    `json:"token_validity_minutes"`
	InferenceBaseURL      string `json:"inference_base_url"`
	RelayTimeoutSeconds   int    `json:"relay_timeout_seconds"`
	GoogleProjectID       string `json:"google_project_id"`
	GoogleCredentialsFile string `json:"google_credentials_file"`
	Env                   string `json:"env"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidityMinutes > 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityMinutes) * time.Minute
	}
	if c.InferenceBaseURL != "" {
		config.InferenceBaseURL = c.InferenceBaseURL
	}
	if c.RelayTimeoutSeconds > 0 {
		config.RelayTimeout = time.Duration(c.RelayTimeoutSeconds) * time.Second
	}
	if c.GoogleProjectID != "" {
		config.GoogleProjectID = c.GoogleProjectID
	}
	if c.GoogleCredentialsFile != "" {
		config.GoogleCredentialsFile = c.GoogleCredentialsFile
	}
	if c.Env != "" {
		config.Env = c.Env
	}
}
