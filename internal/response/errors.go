package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidType    ErrCode = "INVALID_QUESTION_TYPE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Question bank ─────────────────────────────────────────────────
	ErrLibraryNotFound    ErrCode = "LIBRARY_NOT_FOUND"
	ErrQuestionNotFound   ErrCode = "QUESTION_NOT_FOUND"
	ErrPaperNotFound      ErrCode = "PAPER_NOT_FOUND"
	ErrNotEnoughQuestions ErrCode = "NOT_ENOUGH_QUESTIONS"
	ErrNotPaperAuthor     ErrCode = "NOT_PAPER_AUTHOR"
	ErrExportFormat       ErrCode = "UNSUPPORTED_EXPORT_FORMAT"
	ErrExportUnavailable  ErrCode = "EXPORT_UNAVAILABLE"
	ErrJobNotFound        ErrCode = "IMPORT_JOB_NOT_FOUND"

	// ─── Upload ────────────────────────────────────────────────────────
	ErrFileRequired       ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile    ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge       ErrCode = "FILE_TOO_LARGE"
	ErrUnsupportedCharset ErrCode = "UNSUPPORTED_CHARSET"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "用户名或密码错误。"
	case ErrTokenRequired:
		return "需要身份认证令牌。"
	case ErrTokenInvalid:
		return "身份认证令牌无效。"
	case ErrTokenExpired:
		return "身份认证令牌已过期。"

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "您没有权限访问该资源。"
	case ErrAdminAccessOnly:
		return "该操作仅限管理员。"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "参数校验失败，请检查输入。"
	case ErrInvalidID:
		return "ID 格式无效。"
	case ErrInvalidPayload:
		return "请求内容无效。"
	case ErrInvalidType:
		return "题型无效。"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "资源不存在。"
	case ErrConflict:
		return "资源已存在。"
	case ErrActionForbidden:
		return "不允许执行该操作。"

	// ─── Question bank ─────────────────────────────────────────────────
	case ErrLibraryNotFound:
		return "题库不存在。"
	case ErrQuestionNotFound:
		return "题目不存在。"
	case ErrPaperNotFound:
		return "试卷不存在。"
	case ErrNotEnoughQuestions:
		return "题库中符合条件的题目数量不足。"
	case ErrNotPaperAuthor:
		return "您不是该试卷的创建者。"
	case ErrExportFormat:
		return "不支持的导出格式。"
	case ErrExportUnavailable:
		return "服务器未配置该导出格式。"
	case ErrJobNotFound:
		return "导入任务不存在或已过期。"

	// ─── Upload ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "请上传文件。"
	case ErrUnsupportedFile:
		return "不支持的文件格式，仅支持 .txt 和 .md 文件。"
	case ErrFileTooLarge:
		return "文件大小超过限制。"
	case ErrUnsupportedCharset:
		return "不支持的文件编码。"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "请求过于频繁，请稍后再试。"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "服务器内部错误。"
	default:
		return "发生未知错误。"
	}
}
