package response

type ResponseCode int

// Response is the JSON envelope answered by the AJAX endpoints.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    ResponseCode `json:"code,omitempty"`
	Data    any          `json:"data,omitempty"`
}

type ResponseOptions func(*Response)

func WithMessage(message string) ResponseOptions {
	return func(r *Response) {
		r.Message = message
	}
}

func WithCode(code ResponseCode) ResponseOptions {
	return func(r *Response) {
		r.Code = code
	}
}

func WithData(data any) ResponseOptions {
	return func(r *Response) {
		r.Data = data
	}
}

func CustomResponse(opts ...ResponseOptions) Response {
	response := Response{}
	for _, opt := range opts {
		opt(&response)
	}
	return response
}

func SuccessResponse(message string, data any) Response {
	if message == "" {
		message = "success"
	}
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code ResponseCode, msg string) Response {
	return Response{
		Success: false,
		Message: msg,
		Code:    code,
	}
}
