package handler

import "github.com/aws/aws-lambda-go/lambda"

// Handler adapts w to the Lambda runtime interface.
func (w *Wrapper[B, Q, A]) Handler() lambda.Handler {
	return lambda.NewHandler(w.Invoke)
}

// Serve runs the Lambda runtime loop for w. It does not return.
func Serve[B, Q, A any](w *Wrapper[B, Q, A]) {
	lambda.Start(w.Invoke)
}
