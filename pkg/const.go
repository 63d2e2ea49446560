package pkg

const (
	HeaderTraceId    string = "X-Trace-Id"
	HeaderRequestId  string = "X-Request-Id"
	HeaderIsTest     string = "is-test"
	HeaderUpdateType string = "update-type"
)

const (
	TraceId     string = "trace_id"
	RequestId   string = "request_id"
	Username    string = "username"
	Environment string = "environment"
	CurrentUser string = "current_user"
)

// Env selects the store partition a request reads and writes.
type Env string

const (
	EnvProduction Env = "production"
	EnvTest       Env = "test"
)

// EnvFromFlag maps the is-test request flag to an Env.
func EnvFromFlag(isTest bool) Env {
	if isTest {
		return EnvTest
	}
	return EnvProduction
}

type LedgerEventType string

const (
	LedgerEventTransferCompleted      LedgerEventType = "transfer_completed"
	LedgerEventTransferRolledBack     LedgerEventType = "transfer_rolled_back"
	LedgerEventTransferRollbackFailed LedgerEventType = "transfer_rollback_failed"
)
