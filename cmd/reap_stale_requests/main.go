package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/skillsprint-backend/internal/app"
	"github.com/yungbote/skillsprint-backend/internal/jobs/reaper"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var ids idList
	var dryRun bool
	var limit int
	var olderThan time.Duration
	flag.Var(&ids, "id", "request id to check (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "print stale requests without failing them")
	flag.IntVar(&limit, "limit", 0, "limit number of requests processed")
	flag.DurationVar(&olderThan, "older-than", 30*time.Minute, "fail processing requests with no write for this long")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close(ctx)

	opts := reaper.Options{OlderThan: olderThan, Limit: limit, DryRun: dryRun}
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil || id == uuid.Nil {
			fmt.Printf("skipping invalid id %q\n", s)
			continue
		}
		opts.IDs = append(opts.IDs, id)
	}
	if len(ids) > 0 && len(opts.IDs) == 0 {
		fmt.Println("no valid request ids provided")
		return
	}

	res, err := reaper.Reap(ctx, application.Log, application.Repos.GenerationRequest, application.Services.Notifier, opts)
	if err != nil {
		fmt.Printf("reap: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("done; scanned=%d failed=%d\n", res.Scanned, res.Failed)
}
