package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"cpf-signin/app"
	"cpf-signin/internal/observability"
)

func main() {
	runtime, err := app.Build(app.Options{LoadDotEnv: false})
	if err != nil {
		fmt.Printf("bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	// lambda.Start does not return, so Sentry is flushed when the runtime
	// signals shutdown.
	lambda.StartWithOptions(runtime.SignIn.HandleAPIGateway,
		lambda.WithEnableSIGTERM(observability.FlushSentry),
	)
}
