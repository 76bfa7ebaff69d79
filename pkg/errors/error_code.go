package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidType          ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInsufficientData     ErrorCode = 105
	ErrCodeInvalidDateRange     ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound   ErrorCode = 200
	ErrCodeNoDataFound    ErrorCode = 201
	ErrCodeSymbolNotFound ErrorCode = 202

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Screening errors (400-499)
	ErrCodeScreeningFailed ErrorCode = 400
	ErrCodeEmptyUniverse   ErrorCode = 401

	// Portfolio errors (500-599)
	ErrCodePositionNotFound ErrorCode = 500
	ErrCodeDegenerateSizing ErrorCode = 501

	// Backtest errors (600-699)
	ErrCodeBacktestConfigError   ErrorCode = 600
	ErrCodeBacktestNoTradingDays ErrorCode = 601

	// Market data errors (700-799)
	ErrCodeMarketDataLoadFailed  ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
	ErrCodeMarketDataWriteFailed ErrorCode = 702

	// Result sink errors (800-899)
	ErrCodeResultWriteFailed ErrorCode = 800
)
