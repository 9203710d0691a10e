package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/auraxtools/auraxis"
)

type listFlag []string

func (f *listFlag) String() string { return strings.Join(*f, ",") }

func (f *listFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		collection = flag.String("collection", "", "collection to query (required)")
		namespace  = flag.String("namespace", "", "census namespace (default ps2:v2)")
		limit      = flag.Int("limit", 10, "c:limit")
		countMode  = flag.Bool("count", false, "run a count query instead of get")
		showURL    = flag.Bool("url", false, "print the query URL before the result")
		show       listFlag
		hide       listFlag
		resolve    listFlag
		terms      listFlag
	)
	flag.Var(&show, "show", "field to include (repeatable)")
	flag.Var(&hide, "hide", "field to exclude (repeatable)")
	flag.Var(&resolve, "resolve", "c:resolve target (repeatable)")
	flag.Var(&terms, "where", "filter as field=value (repeatable)")
	flag.Parse()

	if *collection == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := []auraxis.Option{}
	if sid := os.Getenv("CENSUS_SERVICE_ID"); sid != "" {
		opts = append(opts, auraxis.WithServiceID(sid))
	}
	client := auraxis.New(opts...)
	defer client.Close()

	q := client.NewQuery(*collection)
	if *namespace != "" {
		q.SetNamespace(*namespace)
	}
	if len(show) > 0 {
		q.Show(show...)
	}
	if len(hide) > 0 {
		q.Hide(hide...)
	}
	if len(resolve) > 0 {
		q.Resolve(resolve...)
	}
	for _, term := range terms {
		field, value, ok := strings.Cut(term, "=")
		if !ok {
			log.Fatalf("bad -where %q, want field=value", term)
		}
		q.Where(field, value)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *countMode {
		n, err := client.Count(ctx, q)
		if err != nil {
			log.Fatalf("count failed: %v", err)
		}
		fmt.Println(n)
		return
	}

	q.Limit(*limit)
	if *showURL {
		fmt.Fprintln(os.Stderr, q.String())
	}

	payload, err := client.Request(ctx, q)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}

	records, err := auraxis.ExtractPayload(payload, *collection)
	if err != nil {
		log.Fatalf("unexpected response shape: %v", err)
	}

	// Decode before printing so MarshalIndent reaches inside the records.
	pretty := make([]any, 0, len(records))
	for _, rec := range records {
		var v any
		if err := json.Unmarshal(rec, &v); err != nil {
			log.Fatalf("bad record in response: %v", err)
		}
		pretty = append(pretty, v)
	}

	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		log.Fatalf("encode failed: %v", err)
	}
	fmt.Println(string(out))
}
