// Command imagegen drives the image generation service from the shell.
//
//	imagegen generate -prompt "a lighthouse at dusk" -output lighthouse
//	imagegen edit -input room.jpg -prompt "add a reading lamp"
//	imagegen templates -type logo_design -param company_name=Acme ...
//	imagegen batch -file prompts.txt -zip batch.zip
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"imagestudio/internal/imagegen"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, imagegen.NewFromConfig)
	stop()
	os.Exit(code)
}
