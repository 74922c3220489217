// Package config provides application configuration management through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Logging
	LogLevel string

	// Wrapping key (legacy plaintext mode, see ACTIVE_WRAPPING_KEY_ID/WRAPPING_KEYS)
	WrappingKeys         string
	ActiveWrappingKeyID  string
	AllowLegacyAlgorithm bool

	// KMS configuration (envelope-level, consumed by the KMS keyring and by
	// WrappingKey loading when KMS-encrypted wrapping keys are used)
	KMSProvider string
	KMSKeyURI   string

	// Keyring selection: "aes" (default), "rsa", or "kms".
	KeyringKind       string
	RSAPrivateKeyPath string

	// Object storage (S3) configuration
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Load loads configuration from environment variables.
// It first attempts to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with existing environment variables.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Wrapping key
		WrappingKeys:         env.GetString("WRAPPING_KEYS", ""),
		ActiveWrappingKeyID:  env.GetString("ACTIVE_WRAPPING_KEY_ID", ""),
		AllowLegacyAlgorithm: parseBool(env.GetString("ALLOW_LEGACY_ALGORITHM", "false")),

		// KMS configuration
		KMSProvider: env.GetString("KMS_PROVIDER", ""),
		KMSKeyURI:   env.GetString("KMS_KEY_URI", ""),

		// Keyring selection
		KeyringKind:       env.GetString("KEYRING_KIND", "aes"),
		RSAPrivateKeyPath: env.GetString("RSA_PRIVATE_KEY_PATH", ""),

		// Object storage
		S3Bucket:          env.GetString("S3_BUCKET", ""),
		S3Region:          env.GetString("S3_REGION", "us-east-1"),
		S3Endpoint:        env.GetString("S3_ENDPOINT", ""),
		S3AccessKeyID:     env.GetString("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: env.GetString("S3_SECRET_ACCESS_KEY", ""),
	}
}

// parseBool parses a boolean environment value, defaulting to false on malformed input.
func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return v
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
