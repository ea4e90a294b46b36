package utils

// ResponseData is the uniform REST envelope. Results is omitted for
// operations that only acknowledge.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on a non-nil error so the recovery middleware can
// translate it into an HTTP response. Typed errors from pkg/error keep
// their status code; everything else surfaces as a 500.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		if len(message) > 0 {
			panic(message[0])
		}
		panic(err)
	}
}
