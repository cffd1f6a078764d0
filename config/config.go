package config

import (
	"os"

	"github.com/joho/godotenv"

	"projecthub/logging"
)

// Config holds every external endpoint and secret the service needs.
// All values come from the environment, optionally seeded from a .env file.
type Config struct {
	ServerPort  string
	MongoURI    string
	MongoDBName string
	CassDB      string
	Neo4jURI    string
	Neo4jUser   string
	Neo4jPass   string
	JWTSecret   string
	UploadDir   string
	SMTPHost    string
	SMTPPort    string
	MailFrom    string
	MailPass    string
	CORSOrigin  string
}

// Load reads .env (if present) and resolves the configuration. Missing
// required keys are fatal; optional ones fall back to local defaults.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_SKIPPED, Description: No .env file loaded: %v", err)
	}

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "projecthub"),
		CassDB:      getEnv("CASS_DB", "127.0.0.1"),
		Neo4jURI:    getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:   getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPass:   os.Getenv("NEO4J_PASSWORD"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		MailFrom:    os.Getenv("MAIL_FROM"),
		MailPass:    os.Getenv("EMAIL_PASSWORD"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
	}

	if cfg.JWTSecret == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set in the environment variables.")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
