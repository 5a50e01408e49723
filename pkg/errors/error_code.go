package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidCostModel     ErrorCode = 103
	ErrCodeInvalidTiming        ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105
	ErrCodeInvalidVersion       ErrorCode = 106

	// Data integrity errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNonMonotonicSeries    ErrorCode = 203
	ErrCodeMalformedBar          ErrorCode = 204
	ErrCodeNoDataFound           ErrorCode = 205

	// Strategy errors (300-399)
	ErrCodeStrategyNotLoaded         ErrorCode = 300
	ErrCodeStrategyConfigError       ErrorCode = 301
	ErrCodeStrategyRuntimeError      ErrorCode = 302
	ErrCodeStrategyContractViolation ErrorCode = 303
	ErrCodeVersionMismatch           ErrorCode = 304

	// Execution errors (400-499)
	ErrCodeInvalidSignal      ErrorCode = 400
	ErrCodeInvalidFill        ErrorCode = 401
	ErrCodeInsufficientCash   ErrorCode = 402
	ErrCodeUntradeableBar     ErrorCode = 403
	ErrCodeFutureBarExecution ErrorCode = 404

	// Backtest errors (500-599)
	ErrCodeBacktestStateNil     ErrorCode = 500
	ErrCodeBacktestInitFailed   ErrorCode = 501
	ErrCodeBacktestNoStrategies ErrorCode = 502
	ErrCodeBacktestNoDatasource ErrorCode = 503
	ErrCodeBacktestNoResultsDir ErrorCode = 504
	ErrCodeBacktestRunAborted   ErrorCode = 505
)
