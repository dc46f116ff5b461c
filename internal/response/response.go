package response

import "github.com/yourname/timesheet/internal"

type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta, Error: nil}
}

func BadRequest(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(400, msg)}
}

func Unauthorized(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(401, msg)}
}

func Forbidden(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(403, msg)}
}

func NotFound(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(404, msg)}
}

func InternalError(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(500, msg)}
}

// ValidationFailed renders field-keyed validation messages with a 422.
func ValidationFailed(fields map[string]string) APIResponse {
	return APIResponse{Error: internal.NewValidationError(fields)}
}

func FromAppError(err *internal.AppError) APIResponse {
	return APIResponse{Error: err}
}
