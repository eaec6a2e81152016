package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DataDir holds problem test assets and submitted sources:
	// <DataDir>/problems/<problemID>/inputN.txt + outputN.txt and
	// <DataDir>/submissions/<submissionID>/code.{c,cpp}.
	DataDir string

	JudgeWorkers          int
	JudgePollInterval     time.Duration
	CompileTimeout        time.Duration
	CCompilerPath         string
	CppCompilerPath       string
	LeaderboardCacheTTL   time.Duration
	LeaderboardCacheLimit int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "gradebox_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		DataDir: getEnv("DATA_DIR", "data"),

		JudgeWorkers:          getEnvAsInt("JUDGE_WORKERS", 1),
		JudgePollInterval:     time.Duration(getEnvAsInt("JUDGE_POLL_INTERVAL_MS", 500)) * time.Millisecond,
		CompileTimeout:        time.Duration(getEnvAsInt("COMPILE_TIMEOUT_SECONDS", 30)) * time.Second,
		CCompilerPath:         getEnv("C_COMPILER", "gcc"),
		CppCompilerPath:       getEnv("CPP_COMPILER", "g++"),
		LeaderboardCacheTTL:   time.Duration(getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 30)) * time.Second,
		LeaderboardCacheLimit: getEnvAsInt("LEADERBOARD_LIMIT", 50),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
