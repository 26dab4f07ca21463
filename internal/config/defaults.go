package config

import "time"

// Task names as they appear under scheduler.tasks.
const (
	TaskHarvestMessages = "harvest_messages"
	TaskSyncGroups      = "sync_groups"
	TaskPublishDigest   = "publish_digest"
	TaskSQLMaintenance  = "sql_maintenance"
)

const (
	DefaultGreenAPIBaseURL = "https://api.green-api.com"
	DefaultGreenAPITimeout = 30 * time.Second

	DefaultStoreDriver = "sqlite"

	DefaultGeminiModel             = "gemini-1.5-flash"
	DefaultGeminiSystemInstruction = "You are a helpful AI that explains things in Hebrew."
	DefaultGeminiTemperature       = 0.2
	DefaultGeminiMaxOutputTokens   = 500
	DefaultGeminiTimeout           = 2 * time.Minute

	DefaultHarvestChatID   = "120363361273752481@g.us"
	DefaultHarvestCount    = 200
	DefaultHarvestLookback = 24 * time.Hour

	DefaultDigestTargetChatID = "120363368567034886@g.us"

	DefaultRedisLockTTL = 10 * time.Minute
)

var defaults = map[string]any{
	"log.level": "info",
	"log.json":  false,

	"greenapi.base_url": DefaultGreenAPIBaseURL,
	"greenapi.timeout":  DefaultGreenAPITimeout,

	"store.driver": DefaultStoreDriver,

	"gemini.model_name":         DefaultGeminiModel,
	"gemini.system_instruction": DefaultGeminiSystemInstruction,
	"gemini.temperature":        DefaultGeminiTemperature,
	"gemini.max_output_tokens":  DefaultGeminiMaxOutputTokens,
	"gemini.timeout":            DefaultGeminiTimeout,

	"harvest.chat_id":  DefaultHarvestChatID,
	"harvest.count":    DefaultHarvestCount,
	"harvest.lookback": DefaultHarvestLookback,

	"digest.target_chat_id": DefaultDigestTargetChatID,

	"scheduler.tasks." + TaskHarvestMessages + ".enabled":  true,
	"scheduler.tasks." + TaskHarvestMessages + ".schedule": "0 0 * * * *",
	"scheduler.tasks." + TaskSyncGroups + ".enabled":       true,
	"scheduler.tasks." + TaskSyncGroups + ".schedule":      "0 30 3 * * *",
	"scheduler.tasks." + TaskPublishDigest + ".enabled":    true,
	"scheduler.tasks." + TaskPublishDigest + ".schedule":   "0 0 20 * * *",
	"scheduler.tasks." + TaskSQLMaintenance + ".enabled":   false,
	"scheduler.tasks." + TaskSQLMaintenance + ".schedule":  "0 0 4 * * 0",

	"scheduler.redis.lock_ttl": DefaultRedisLockTTL,
}

// legacyEnv maps config keys to the unprefixed variable names used by the
// first deployment's .env file. Its SUPABASE_URL and SUPABASE_KEY are REST
// project credentials, not a database connection, so they are not read.
var legacyEnv = map[string]string{
	"greenapi.instance_id": "INSTANCE_ID",
	"greenapi.token":       "GREEN_API_TOKEN",
	"gemini.api_key":       "GEMINI_API_KEY",
}

// envOnlyKeys have no default and must be bound to the environment
// explicitly so AutomaticEnv picks them up during Unmarshal.
var envOnlyKeys = []string{
	"greenapi.instance_id",
	"greenapi.token",
	"store.url",
	"store.key",
	"gemini.api_key",
	"telegram.token",
	"telegram.chat_id",
	"scheduler.redis.addr",
	"scheduler.redis.password",
	"scheduler.redis.db",
	"server.addr",
}
