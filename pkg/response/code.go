package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 优惠券模块错误 200xx
	ErrCouponNotFound   = 20001
	ErrCouponOutOfStock = 20002
	ErrCouponClaimed    = 20003
	ErrCouponUnusable   = 20004
	ErrCouponExists     = 20005

	// 订单模块错误 300xx
	ErrOrderNotFound      = 30001
	ErrInvalidTransition  = 30002
	ErrInvalidResultFile  = 30003
	ErrResultFileExpired  = 30004
	ErrProductNotFound    = 30005
	ErrCartItemNotFound   = 30006
	ErrStorageUnavailable = 30007
	ErrDuplicateSubmit    = 30008
	ErrNoResultFile       = 30009

	// 评价模块错误 400xx
	ErrReviewNotFound    = 40001
	ErrReviewExists      = 40002
	ErrReviewNotAllowed  = 40003
	ErrInvalidReviewFile = 40004

	// 问答模块错误 410xx
	ErrQnANotFound      = 41001
	ErrQnAPasswordWrong = 41002
	ErrQnAForbidden     = 41003

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
