package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldFile          = "file"
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldType          = "transaction_type"
	FieldMonth         = "month"
	FieldYear          = "year"
	FieldSettingKey    = "setting_key"
	FieldLimit         = "monthly_limit"
	FieldCount         = "count"
	FieldEventID       = "event_id"
	FieldQueue         = "queue"
	FieldExchange      = "exchange"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentStore    = "store"
	ComponentSummary  = "summary"
	ComponentSettings = "settings"
	ComponentRecorder = "recorder"
	ComponentAMQP     = "amqp"
	ComponentArchive  = "archive"
	ComponentArchiver = "archiver"
	ComponentSheets   = "sheets"
)

// Operations defines standard operation names
const (
	OpLoad    = "load"
	OpSave    = "save"
	OpAdd     = "add"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpRebuild = "rebuild"
	OpPublish = "publish"
	OpConsume = "consume"
	OpInsert  = "insert"
	OpAppend  = "append"
)
