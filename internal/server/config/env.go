package config

import "os"

// parseEnv overlays Config fields from environment variables. Only variables
// that are actually set override the current values.
//
// Recognized variables:
//
//	ADDRESS                         HTTP bind address (e.g. ":5000")
//	PORT                            listening port, used when ADDRESS is unset
//	DATABASE_DSN                    PostgreSQL DSN
//	JWT_SECRET                      HMAC secret for signing session tokens
//	INFERENCE_URL                   base URL of the model-serving backend
//	GOOGLE_CLOUD_PROJECT_ID         translation provider project
//	GOOGLE_APPLICATION_CREDENTIALS  path to the provider key file
//	APP_ENV                         "production" or "development"
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	} else if v, ok := os.LookupEnv("PORT"); ok {
		config.EndpointAddr = ":" + v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("INFERENCE_URL"); ok {
		config.InferenceBaseURL = v
	}
	if v, ok := os.LookupEnv("GOOGLE_CLOUD_PROJECT_ID"); ok {
		config.GoogleProjectID = v
	}
	if v, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
		config.GoogleCredentialsFile = v
	}
	if v, ok := os.LookupEnv("APP_ENV"); ok {
		config.Env = v
	}
}
