package main

import (
	"context"
	"errors"
	"os"

	"outbound-custom/cmd/outbound-cli/commands"
	"outbound-custom/lib/serviceutil"
	"outbound-custom/lib/telemetry"
)

func main() {
	ctx, stop := serviceutil.SignalContext()
	defer stop()

	t, err := telemetry.SetupFromEnv(ctx, "outbound-cli")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer t.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
