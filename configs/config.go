package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	Env                  string
	FacebookClientID     string
	FacebookClientSecret string
	FacebookRedirectURI  string
	GraphAPIBaseURL      string
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	R2                   R2
	SecretKey            string
	CredentialKey        string
	CookieName           string
}

func LoadConfig() *Config {
	return &Config{
		Env:                  getEnv("APP_ENV", "development"),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		FacebookRedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		GraphAPIBaseURL:      getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v21.0"),
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", ""),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		SecretKey:     getEnv("SECRET_KEY", ""),
		CredentialKey: getEnv("CREDENTIAL_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", "autopost_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
