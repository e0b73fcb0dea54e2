package errs

const (
	ErrCode_OK            = 0
	ErrCode_Unknown       = 1
	ErrCode_HostClosed    = 100
	ErrCode_HostQueueFull = 101
	ErrCode_WouldBlock    = 102
	ErrCode_InvalidConfig = 200
)

var (
	Unknown       = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	HostClosed    = CreateCodeError(ErrCode_HostClosed, "HOST_CLOSED")
	HostQueueFull = CreateCodeError(ErrCode_HostQueueFull, "HOST_QUEUE_FULL")
	WouldBlock    = CreateCodeError(ErrCode_WouldBlock, "WOULD_BLOCK_HOST")
	InvalidConfig = CreateCodeError(ErrCode_InvalidConfig, "INVALID_CONFIG")
)
