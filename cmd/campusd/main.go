package main

import (
	"context"

	"campusassist-backend/cmd/campusd/commands"
	"campusassist-backend/lib/serviceutil"
	"campusassist-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()

	t, err := telemetry.SetupFromEnv(ctx, "campusd")
	if err != nil {
		serviceutil.Fatal("failed to initialize telemetry", err)
	}
	defer t.Shutdown(ctx)
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
