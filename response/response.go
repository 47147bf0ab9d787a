package response

// ErrorBody 错误响应，所有失败的请求都使用该结构
type ErrorBody struct {
	Message string `json:"message"`
}

// Error 构造一个失败的响应
func Error(message string) *ErrorBody {
	return &ErrorBody{Message: message}
}
