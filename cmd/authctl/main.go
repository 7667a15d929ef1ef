// authctl is the operator CLI for the auth service. Every subcommand
// connects with the same configuration as the server, runs one action,
// and disconnects.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lanehart/authd/internal/bootstrap"
	"github.com/lanehart/authd/internal/infrastructure/security"
	"github.com/lanehart/authd/internal/infrastructure/storage"
	"github.com/lanehart/authd/internal/logger"
	"github.com/lanehart/authd/internal/report"
	"github.com/lanehart/authd/internal/transport/http/handlers"
	"github.com/lanehart/authd/internal/transport/http/middleware"
	"github.com/lanehart/authd/internal/transport/http/response"
	"github.com/lanehart/authd/internal/transport/http/router"
)

const usage = `usage: authctl <command> [flags]

commands:
  create-superuser  -email a@b.co -name "Ada" [-password pw]
  change-password   -email a@b.co [-password pw]
  promote           -email a@b.co
  deactivate        -email a@b.co
  reactivate        -email a@b.co
  report            [-out report.json] [-upload]

Omitted passwords are generated and printed once.
`

func main() {
	logger.Init()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	os.Exit(run(os.Args[1], os.Args[2:]))
}

func run(cmd string, args []string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	core, cleanup, err := bootstrap.NewCore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}
	defer cleanup()

	switch cmd {
	case "create-superuser":
		return createSuperuser(ctx, core, args)
	case "change-password":
		return changePassword(ctx, core, args)
	case "promote":
		return promote(ctx, core, args)
	case "deactivate":
		return setActive(ctx, core, args, false)
	case "reactivate":
		return setActive(ctx, core, args, true)
	case "report":
		return runReport(ctx, core, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
}

func createSuperuser(ctx context.Context, core *bootstrap.Core, args []string) int {
	fs := flag.NewFlagSet("create-superuser", flag.ExitOnError)
	email := fs.String("email", "", "email address (required)")
	name := fs.String("name", "", "display name (required)")
	password := fs.String("password", "", "password; generated when omitted")
	_ = fs.Parse(args)

	if *email == "" || *name == "" {
		fs.Usage()
		return 1
	}

	u, generated, err := core.Service.CreateSuperuser(ctx, *email, *name, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}
	fmt.Printf("superuser created: %s (%s)\n", u.Email, u.ID)
	if generated != "" {
		fmt.Printf("generated password (shown once): %s\n", generated)
	}
	return 0
}

func changePassword(ctx context.Context, core *bootstrap.Core, args []string) int {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	email := fs.String("email", "", "email address (required)")
	password := fs.String("password", "", "new password; generated when omitted")
	_ = fs.Parse(args)

	if *email == "" {
		fs.Usage()
		return 1
	}

	generated, err := core.Service.SetPassword(ctx, *email, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}
	fmt.Printf("password updated for %s\n", *email)
	if generated != "" {
		fmt.Printf("generated password (shown once): %s\n", generated)
	}
	return 0
}

func promote(ctx context.Context, core *bootstrap.Core, args []string) int {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)
	email := fs.String("email", "", "email address (required)")
	_ = fs.Parse(args)

	if *email == "" {
		fs.Usage()
		return 1
	}

	u, err := core.Service.Promote(ctx, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}
	fmt.Printf("%s is now a superuser\n", u.Email)
	return 0
}

func setActive(ctx context.Context, core *bootstrap.Core, args []string, active bool) int {
	verb := "deactivate"
	if active {
		verb = "reactivate"
	}
	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	email := fs.String("email", "", "email address (required)")
	_ = fs.Parse(args)

	if *email == "" {
		fs.Usage()
		return 1
	}

	var err error
	if active {
		err = core.Service.Reactivate(ctx, *email)
	} else {
		err = core.Service.Deactivate(ctx, *email)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}
	fmt.Printf("%s: %sd\n", *email, verb)
	return 0
}

func runReport(ctx context.Context, core *bootstrap.Core, args []string) int {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	out := fs.String("out", "", "write the report to this file instead of stdout")
	upload := fs.Bool("upload", false, "also upload the report to object storage")
	_ = fs.Parse(args)

	// Rebuild the serving mux so the report reflects the real route
	// table, not a hand-maintained list.
	signer := security.NewJWTSigner(core.Cfg.JWTSecret, core.Cfg.JWTIssuer)
	mux := router.New(router.Deps{
		Auth:             handlers.NewAuthHandler(core.Service),
		Health:           handlers.NewHealthHandler(core.DB),
		RequireAuth:      middleware.RequireAuth(signer, core.Service, response.WriteError),
		RequireSuperuser: middleware.RequireSuperuser(response.WriteError),
	})

	rep, err := report.Build(ctx, core.DB, mux)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}
	data, err := rep.JSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}

	if *out != "" {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "authctl: write %s: %v\n", *out, err)
			return 1
		}
		fmt.Printf("report written to %s\n", *out)
	} else {
		os.Stdout.Write(data)
	}

	if *upload {
		store, err := storage.NewS3Store(ctx, storage.Config{
			Region:       core.Cfg.S3.Region,
			AccessKey:    core.Cfg.S3.AccessKey,
			SecretKey:    core.Cfg.S3.SecretKey,
			Bucket:       core.Cfg.S3.Bucket,
			BaseEndpoint: core.Cfg.S3.BaseEndpoint,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
			return 1
		}
		key := fmt.Sprintf("reports/authd-%s.json", rep.GeneratedAt.Format("20060102-150405"))
		if err := store.Upload(ctx, key, data, false); err != nil {
			fmt.Fprintf(os.Stderr, "authctl: upload: %v\n", err)
			return 1
		}
		url, err := store.PresignGet(ctx, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "authctl: presign: %v\n", err)
			return 1
		}
		fmt.Printf("uploaded: %s\n", url)
	}
	return 0
}
