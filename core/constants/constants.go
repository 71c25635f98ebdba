package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"
)

// Timeouts
const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Redis key prefixes
const (
	RedisKeySlotCache      = "slots:"
	RedisKeyTokenBlacklist = "token:blacklist:"
)

// SlotCacheTTL bounds staleness of cached availability; booking and rule
// writes invalidate eagerly, the TTL only covers external calendar drift.
const SlotCacheTTL = 2 * time.Minute

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Availability defaults applied when an event type leaves a field unset
const (
	DefaultSlotIntervalMinutes = 30
	DefaultMinNoticeMinutes    = 60
	DefaultHorizonDays         = 60
	MinutesPerDay              = 24 * 60
)

// Asynq task type names
const (
	TaskCalendarSync    = "calendar:sync"
	TaskBookingReminder = "booking:reminder"
)
