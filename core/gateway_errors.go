package core

// Gateway-specific error codes, layered onto the retry/classification
// machinery in errors.go. IsRetryable only treats rate_limit, timeout,
// and provider_unavailable as retryable; none of these are, matching
// their recovery policy (log-and-swallow, fallback, or user-visible
// notice rather than blind retry).
const (
	// ErrClientProtocol marks a malformed inbound client message.
	ErrClientProtocol ErrorCode = "client_protocol"

	// ErrSchemaViolation marks a payload that failed validation against
	// its declared schema, inbound or outbound.
	ErrSchemaViolation ErrorCode = "schema_violation"

	// ErrAgentTimeout marks a sub-agent dispatch exceeding its ceiling.
	ErrAgentTimeout ErrorCode = "agent_timeout"

	// ErrAgentCrash marks a non-timeout failure inside a sub-agent.
	ErrAgentCrash ErrorCode = "agent_crash"

	// ErrLiveModel marks an error surfaced by the live-model adapter.
	ErrLiveModel ErrorCode = "live_model_error"

	// ErrPersistence marks a failed memory/session store operation.
	// Always logged and swallowed; never user-visible.
	ErrPersistence ErrorCode = "persistence_failure"

	// ErrBackpressureDrop marks a message dropped after the output
	// queue's bounded wait elapsed.
	ErrBackpressureDrop ErrorCode = "backpressure_drop"
)
