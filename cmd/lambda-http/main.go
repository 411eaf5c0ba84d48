package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resume-optimizer/internal/archive"
	"resume-optimizer/internal/bootstrap"
	"resume-optimizer/internal/shared/config"
	"resume-optimizer/internal/shared/telemetry"
)

// shutdownDrain fits inside the shutdown phase Lambda grants a function
// with only internal extensions registered.
const shutdownDrain = 400 * time.Millisecond

var (
	initOnce  sync.Once
	initErr   error
	app       *bootstrap.App
	cfg       config.Config
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	cfg = config.Load()
	telemetry.SetLevel(cfg.LogLevel)
	app, initErr = bootstrap.Build(cfg)
	if initErr != nil {
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": initErr.Error()})
		body, _ := json.Marshal(map[string]string{"error": "bootstrap failed", "code": "internal"})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 500,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, initErr
	}
	if ginLambda == nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 500,
			Body:       `{"error":"router not initialized","code":"internal"}`,
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}

	resp, err := ginLambda.ProxyWithContext(ctx, req)
	settle(app.Archiver, cfg.ArchiveWait)
	return resp, err
}

// settle holds the response for at most wait while archival writes finish.
// With a zero wait the writes stay pending across the freeze and complete
// on the next invocation or in drain.
func settle(archiver *archive.Archiver, wait time.Duration) bool {
	if wait <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	if err := archiver.Wait(ctx); err != nil {
		telemetry.Warn("archive.drain_incomplete", map[string]any{"err": err.Error(), "wait": wait.String()})
		return false
	}
	return true
}

// drain runs on SIGTERM before the execution environment is reclaimed.
func drain() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownDrain)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		telemetry.Warn("archive.shutdown_incomplete", map[string]any{"err": err.Error()})
		return
	}
	telemetry.Info("lambda.shutdown", nil)
}

func main() {
	lambda.StartWithOptions(handler, lambda.WithEnableSIGTERM(drain))
}
