package handler

import "fmt"

const (
	StatusOK         = "200"
	StatusBadRequest = "400"

	ContentTypeJSON = "application/json"

	KindUnsupportedMethod = "unsupported_method"
)

// Response is what the hosting platform receives. StatusCode is a string on
// the wire.
type Response struct {
	StatusCode string            `json:"statusCode"`
	Body       Body              `json:"body"`
	Headers    map[string]string `json:"headers"`
}

// Body carries exactly one of Image or Error.
type Body struct {
	Image string `json:"image,omitempty"`
	Error *Fault `json:"error,omitempty"`
}

func (b Body) IsError() bool {
	return b.Error != nil
}

// Fault is a client error reported in the response body.
type Fault struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func UnsupportedMethod(method string) *Fault {
	return &Fault{
		Kind:    KindUnsupportedMethod,
		Message: fmt.Sprintf("Unsupported method %q", method),
	}
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": ContentTypeJSON}
}

func Success(image string) Response {
	return Response{
		StatusCode: StatusOK,
		Body:       Body{Image: image},
		Headers:    jsonHeaders(),
	}
}

func Failure(f *Fault) Response {
	return Response{
		StatusCode: StatusBadRequest,
		Body:       Body{Error: f},
		Headers:    jsonHeaders(),
	}
}
