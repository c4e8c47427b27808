package lambda

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

// Serve hands e to the Lambda runtime. It only returns once ctx is done
// before the runtime starts; afterwards the runtime owns the process.
func Serve(ctx context.Context, e *Engine) error {
	e.logger.WithField("function", e.invoker.Context().FunctionName).Info("serving function on lambda")
	awslambda.StartWithOptions(e.Invoke, awslambda.WithContext(ctx))
	return ctx.Err()
}
