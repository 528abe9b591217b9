package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"clover-api"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// PostgreSQL (Staging Database)
	DatabaseDriver                string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                  string        `env:"DB_HOST" env-default:""`
	DatabasePort                  string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword              string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                  string        `env:"DB_NAME" env-default:"clover"`
	DatabaseSSLMode               string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce        int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Kafka Consumer (lead intake)
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaInputTopic      string   `env:"KAFKA_INPUT_TOPIC" env-default:"inbound-leads"`
	KafkaConsumerGroup   string   `env:"KAFKA_CONSUMER_GROUP" env-default:"clover-consumer"`
	KafkaConsumerEnabled bool     `env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`

	// Kafka Producer settings
	KafkaOutputTopic  string `env:"KAFKA_OUTPUT_TOPIC" env-default:"lead-verdicts"`
	KafkaBatchSize    int    `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int    `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int    `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// CRM (HubSpot-compatible API)
	CRMBaseURL        string  `env:"CRM_BASE_URL" env-default:"https://api.hubapi.com"`
	CRMToken          string  `env:"CRM_TOKEN" env-default:""`
	CRMSearchRPS      float64 `env:"CRM_SEARCH_RPS" env-default:"5"`
	CRMTimeoutSeconds int     `env:"CRM_TIMEOUT_SECONDS" env-default:"15"`

	// Property directory (Supabase-compatible API)
	DirectoryBaseURL        string `env:"DIRECTORY_BASE_URL" env-default:""`
	DirectoryAPIKey         string `env:"DIRECTORY_API_KEY" env-default:""`
	DirectoryTimeoutSeconds int    `env:"DIRECTORY_TIMEOUT_SECONDS" env-default:"15"`
	DirectoryCheckEnabled   bool   `env:"DIRECTORY_CHECK_ENABLED" env-default:"true"`

	// Matching
	MatchCombinedAccept   float64 `env:"MATCH_COMBINED_ACCEPT" env-default:"90"`
	MatchStrongName       float64 `env:"MATCH_STRONG_NAME" env-default:"92"`
	MatchMediumNameLow    float64 `env:"MATCH_MEDIUM_NAME_LOW" env-default:"85"`
	MatchMediumBand       bool    `env:"MATCH_MEDIUM_BAND" env-default:"true"`
	MatchShortNameExact   float64 `env:"MATCH_SHORT_NAME_EXACT" env-default:"99.5"`
	MatchNameWeight       float64 `env:"MATCH_NAME_WEIGHT" env-default:"0.6"`
	MatchCityBonus        float64 `env:"MATCH_CITY_BONUS" env-default:"25"`
	MatchCountryBonus     float64 `env:"MATCH_COUNTRY_BONUS" env-default:"5"`
	MatchAggregate        string  `env:"MATCH_AGGREGATE" env-default:"average"`
	MatchLocationPolicy   string  `env:"MATCH_LOCATION_POLICY" env-default:"conjunctive"`
	MatchQueryTokens      int     `env:"MATCH_QUERY_TOKENS" env-default:"3"`
	MatchSearchLimit      int     `env:"MATCH_SEARCH_LIMIT" env-default:"20"`
	MatchDirectoryMinimum float64 `env:"MATCH_DIRECTORY_MINIMUM" env-default:"90"`
	MatchExtendedTrail    bool    `env:"MATCH_EXTENDED_TRAIL" env-default:"false"`

	// Processing
	LeadWorkerCount int `env:"LEAD_WORKER_COUNT" env-default:"4"`
	LeadMaxAttempts int `env:"LEAD_MAX_ATTEMPTS" env-default:"3"`
}
