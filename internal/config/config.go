package config

import (
	"strconv"
	"strings"

	"github.com/skillfolio/profile-service/internal/envconfig"
)

type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string `validate:"required"`
	DataStore    string `validate:"required,oneof=firestore memory"`
	CORS         CORSConfig
	Firestore    FirestoreConfig
	Gemini       GeminiConfig
	Assessment   AssessmentConfig
	Platforms    PlatformsConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type FirestoreConfig struct {
	EmulatorHost string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type AssessmentConfig struct {
	MaxQuestions int `validate:"min=1,max=50"`
}

type PlatformsConfig struct {
	CodeChefBaseURL string
	LeetCodeURL     string
}

func Load() (Config, error) {
	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", "skillfolio-dev"),
		DataStore:    envconfig.Get("DATASTORE", "firestore"),
		CORS: CORSConfig{
			AllowedOrigins: splitList(envconfig.Get("CORS_ALLOWED_ORIGINS", "")),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Gemini: GeminiConfig{
			APIKey: envconfig.Get("GEMINI_API_KEY", ""),
			Model:  envconfig.Get("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Assessment: AssessmentConfig{
			MaxQuestions: intEnv("ASSESSMENT_QUESTIONS", 20),
		},
		Platforms: PlatformsConfig{
			CodeChefBaseURL: envconfig.Get("CODECHEF_BASE_URL", ""),
			LeetCodeURL:     envconfig.Get("LEETCODE_GRAPHQL_URL", ""),
		},
	}
	return cfg, envconfig.Validate(cfg)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intEnv(name string, fallback int) int {
	raw := envconfig.Get(name, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
