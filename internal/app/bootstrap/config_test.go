package bootstrap

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "gembatrack",
		SessionKey:    "0123456789abcdef0123456789abcdef",
		SessionName:   "gembatrack-session",
		CSRFKey:       strings.Repeat("k", 32),
		UploadDir:     "./uploads",
		UploadURL:     "/files",
	}
}

func TestValidateConfig_OK(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "http://not-a-mongo-uri"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected invalid mongo URI to be rejected")
	}
}

func TestValidateConfig_CSRFKeyLength(t *testing.T) {
	cfg := validAppConfig()
	cfg.CSRFKey = "too-short"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected short CSRF key to be rejected")
	}
}

func TestValidateConfig_GoogleCredentialsPaired(t *testing.T) {
	cfg := validAppConfig()
	cfg.GoogleClientID = "client-id"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected client ID without secret to be rejected")
	}

	cfg.GoogleClientSecret = "client-secret"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err != nil {
		t.Errorf("expected paired credentials to pass, got %v", err)
	}
}

func TestValidateConfig_EmptyUploadDir(t *testing.T) {
	cfg := validAppConfig()
	cfg.UploadDir = ""
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected empty upload_dir to be rejected")
	}
}
