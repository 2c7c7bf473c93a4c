package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/skillsprint-backend/internal/app"
	"github.com/yungbote/skillsprint-backend/internal/platform/envutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}

	if err := application.Start(); err != nil {
		application.Log.Error("Failed to start background workers", "error", err)
		application.Close(context.Background())
		os.Exit(1)
	}

	grace := envutil.Seconds("SHUTDOWN_GRACE_SECONDS", 30*time.Second)
	if err := application.Run(ctx, grace); err != nil {
		fmt.Printf("Server exited: %v\n", err)
		os.Exit(1)
	}
}
