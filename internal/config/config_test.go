package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "", cfg.WrappingKeys)
				assert.Equal(t, "", cfg.ActiveWrappingKeyID)
				assert.Equal(t, false, cfg.AllowLegacyAlgorithm)
				assert.Equal(t, "", cfg.KMSProvider)
				assert.Equal(t, "", cfg.KMSKeyURI)
				assert.Equal(t, "", cfg.S3Bucket)
				assert.Equal(t, "us-east-1", cfg.S3Region)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
		{
			name: "load custom wrapping key configuration",
			envVars: map[string]string{
				"WRAPPING_KEYS":           "k1:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
				"ACTIVE_WRAPPING_KEY_ID":  "k1",
				"ALLOW_LEGACY_ALGORITHM":  "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "k1:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=", cfg.WrappingKeys)
				assert.Equal(t, "k1", cfg.ActiveWrappingKeyID)
				assert.Equal(t, true, cfg.AllowLegacyAlgorithm)
			},
		},
		{
			name: "load custom KMS configuration",
			envVars: map[string]string{
				"KMS_PROVIDER": "awskms",
				"KMS_KEY_URI":  "awskms://alias/my-key?region=us-west-2",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "awskms", cfg.KMSProvider)
				assert.Equal(t, "awskms://alias/my-key?region=us-west-2", cfg.KMSKeyURI)
			},
		},
		{
			name: "load custom S3 configuration",
			envVars: map[string]string{
				"S3_BUCKET":             "my-bucket",
				"S3_REGION":             "eu-west-1",
				"S3_ENDPOINT":           "http://localhost:9000",
				"S3_ACCESS_KEY_ID":      "AKIDEXAMPLE",
				"S3_SECRET_ACCESS_KEY":  "secret",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "my-bucket", cfg.S3Bucket)
				assert.Equal(t, "eu-west-1", cfg.S3Region)
				assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
				assert.Equal(t, "AKIDEXAMPLE", cfg.S3AccessKeyID)
				assert.Equal(t, "secret", cfg.S3SecretAccessKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			// Load configuration
			cfg := Load()

			// Validate
			tt.validate(t, cfg)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	// Create a temporary directory structure
	tmpDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	// Create a .env file in the temp root
	err = os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("TEST_ENV_VAR=found"), 0600)
	require.NoError(t, err)

	// Create a child directory
	childDir := filepath.Join(tmpDir, "child", "grandchild")
	err = os.MkdirAll(childDir, 0700)
	require.NoError(t, err)

	// Change working directory to childDir
	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(oldCwd)
	}()

	err = os.Chdir(childDir)
	require.NoError(t, err)

	// Load .env
	loadDotEnv()

	// Verify the env var was loaded
	assert.Equal(t, "found", os.Getenv("TEST_ENV_VAR"))
	err = os.Unsetenv("TEST_ENV_VAR")
	require.NoError(t, err)
}
