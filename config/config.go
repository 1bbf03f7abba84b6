package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort      string `mapstructure:"HTTP_PORT"`
	GRPCPort      string `mapstructure:"GRPC_PORT"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	MongoUsersURI     string `mapstructure:"MONGODB_URI_USERS"`
	MongoCustomersURI string `mapstructure:"MONGODB_URI_CUSTOMERS"`
	MongoUsersDB      string `mapstructure:"MONGO_USERS_DB"`
	MongoCustomersDB  string `mapstructure:"MONGO_CUSTOMERS_DB"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`

	AccessSecret  string        `mapstructure:"ACCESS_SECRET"`
	RefreshSecret string        `mapstructure:"REFRESH_SECRET"`
	AccessTTL     time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL    time.Duration `mapstructure:"REFRESH_TTL"`
	CookieDomain  string        `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`

	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
	UploadDir      string   `mapstructure:"UPLOAD_DIR"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	QuizPassingRatio           float64       `mapstructure:"QUIZ_PASSING_RATIO"`
	AllowDuplicateReviews      bool          `mapstructure:"ALLOW_DUPLICATE_REVIEWS"`
	AllowDuplicateCertificates bool          `mapstructure:"ALLOW_DUPLICATE_CERTIFICATES"`
	ReviewSummaryTTL           time.Duration `mapstructure:"REVIEW_SUMMARY_TTL"`
	HealthInterval             time.Duration `mapstructure:"HEALTH_INTERVAL"`
	GinMode                    string        `mapstructure:"GIN_MODE"`
}

var defaults = map[string]any{
	"HTTP_PORT":                    ":5000",
	"GRPC_PORT":                    ":50051",
	"STORAGE_DRIVER":               "postgres",
	"DB_HOST":                      "localhost",
	"DB_PORT":                      "5432",
	"DB_USER":                      "postgres",
	"DB_PASSWORD":                  "",
	"DB_NAME":                      "careermate",
	"DB_SSLMODE":                   "disable",
	"MONGODB_URI_USERS":            "mongodb://localhost:27017",
	"MONGODB_URI_CUSTOMERS":        "",
	"MONGO_USERS_DB":               "careermate_users",
	"MONGO_CUSTOMERS_DB":           "careermate_customers",
	"REDIS_ADDR":                   "localhost:6379",
	"ACCESS_SECRET":                "",
	"REFRESH_SECRET":               "",
	"ACCESS_TTL":                   "15m",
	"REFRESH_TTL":                  "168h",
	"COOKIE_DOMAIN":                "",
	"COOKIE_SECURE":                false,
	"ALLOWED_ORIGINS":              "",
	"UPLOAD_DIR":                   "uploads",
	"GEMINI_API_KEY":               "",
	"GEMINI_MODEL":                 "gemini-2.0-flash",
	"QUIZ_PASSING_RATIO":           0.7,
	"ALLOW_DUPLICATE_REVIEWS":      true,
	"ALLOW_DUPLICATE_CERTIFICATES": true,
	"REVIEW_SUMMARY_TTL":           "5m",
	"HEALTH_INTERVAL":              "15s",
	"GIN_MODE":                     "",
}

// LoadConfig reads <path>/.env into the process environment, then app.env, then the environment.
// Both files are optional; environment variables win over app.env.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		// bind explicitly so keys are seen without a file
		_ = v.BindEnv(key)
	}

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	if config.MongoCustomersURI == "" {
		config.MongoCustomersURI = config.MongoUsersURI
	}
	return
}
