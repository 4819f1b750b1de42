package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	// S3 bucket receiving one JSON object per accepted ingestion envelope.
	ArchiveBucket string

	// SNS platform application used for push delivery. Empty disables sends;
	// retraction withdrawals still persist with zero messages dispatched.
	SNSPlatformARN string
	SNSRegion      string

	// Ordered list of trusted channel ids; index = priority rank (lower wins),
	// any channel not listed gets the lowest rank.
	PriorityChannels []string

	SuperOfferBroadcast bool
	NotifLookbackDays   int
	SoftDeleteGraceDays int
	MatchBatchSize      int

	// bcrypt hash of the shared crawler API key for the ingestion endpoint.
	IngestAPIKeyHash string

	AlertWebhookURL string

	JWTPublicKeyPath string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Offers        string
	Notifications string
	Receipts      string
	Favorites     string
	Devices       string
	Users         string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Offers:        getEnv("DYNAMO_TABLE_OFFERS", "offers"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Receipts:      getEnv("DYNAMO_TABLE_RECEIPTS", "notification_receipts"),
			Favorites:     getEnv("DYNAMO_TABLE_FAVORITES", "favorites"),
			Devices:       getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
		},

		ArchiveBucket: getEnv("ARCHIVE_BUCKET_NAME", "dealradar-event-archive"),

		SNSPlatformARN: getEnv("SNS_PLATFORM_ARN", ""),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),

		PriorityChannels: splitList(getEnv("PRIORITY_CHANNELS", "keepa,camel")),

		SuperOfferBroadcast: getEnvBool("SUPER_OFFER_BROADCAST", false),
		NotifLookbackDays:   getEnvInt("NOTIF_LOOKBACK_DAYS", 7),
		SoftDeleteGraceDays: getEnvInt("SOFT_DELETE_GRACE_DAYS", 7),
		MatchBatchSize:      getEnvInt("MATCH_BATCH_SIZE", 10),

		IngestAPIKeyHash: getEnv("INGEST_API_KEY_HASH", ""),

		AlertWebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
