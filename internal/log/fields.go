package log

const (
	FieldComponent = "component"
	FieldSource    = "source"
	FieldOp        = "op"
	FieldRequestID = "request_id"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"

	FieldRoomID = "room_id"
	FieldUserID = "user_id"

	FieldTick       = "tick"
	FieldGeneration = "generation"
)
