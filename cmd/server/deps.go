package main

import (
	"context"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgview/internal/util"
	"github.com/OFFIS-RIT/kgview/pkg/ai"
	oai "github.com/OFFIS-RIT/kgview/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/kgview/pkg/ai/openai"
	"github.com/OFFIS-RIT/kgview/pkg/leaselock"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/store"
	"github.com/OFFIS-RIT/kgview/pkg/store/fs"
	"github.com/OFFIS-RIT/kgview/pkg/store/pgx"
	"github.com/OFFIS-RIT/kgview/pkg/store/s3"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultOllamaURL = "http://host.docker.internal:11434"

// newGraphStorage opens the backend selected by GRAPH_STORE. The returned
// func releases its resources. The locker is only set for the shared
// postgres backend.
func newGraphStorage(ctx context.Context) (store.GraphStorage, *leaselock.Locker, func(), error) {
	noop := func() {}
	switch backend := util.GetEnvString("GRAPH_STORE", "fs"); backend {
	case "fs":
		s, err := fs.NewGraphFileStorage(util.GetEnvString("GRAPHS_DIR", "graphs"))
		if err != nil {
			return nil, nil, noop, err
		}
		logger.Info("Using file graph storage", "dir", s.Dir())
		return s, nil, noop, nil

	case "s3":
		client, err := s3.NewS3Client(ctx, s3.ClientParams{
			Region:    util.GetEnvString("AWS_REGION", "us-east-1"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
			SecretKey: util.GetEnv("AWS_SECRET_KEY"),
		})
		if err != nil {
			return nil, nil, noop, err
		}
		bucket := util.GetEnv("AWS_BUCKET")
		if bucket == "" {
			return nil, nil, noop, errors.New("AWS_BUCKET is required for the s3 graph store")
		}
		prefix := util.GetEnvString("AWS_PREFIX", "graphs")
		logger.Info("Using object graph storage", "bucket", bucket, "prefix", prefix)
		return s3.NewGraphObjectStorage(client, bucket, prefix), nil, noop, nil

	case "postgres":
		url := util.GetEnv("DATABASE_URL")
		if url == "" {
			return nil, nil, noop, errors.New("DATABASE_URL is required for the postgres graph store")
		}
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			return nil, nil, noop, errors.Wrap(err, "connect to database")
		}
		err = util.RetryErrWithContext(ctx, 10, 2*time.Second, func(ctx context.Context) error {
			err := pool.Ping(ctx)
			if err != nil {
				logger.Warn("Database not ready", "err", err)
			}
			return err
		})
		if err != nil {
			pool.Close()
			return nil, nil, noop, errors.Wrap(err, "ping database")
		}
		if err := pgx.Migrate(url); err != nil {
			pool.Close()
			return nil, nil, noop, err
		}
		logger.Info("Using postgres graph storage")
		return pgx.NewGraphDBStorageWithConnection(pool), leaselock.New(pool), pool.Close, nil

	default:
		return nil, nil, noop, errors.Newf("unknown GRAPH_STORE %q", backend)
	}
}

// newAIClient builds the adapter selected by AI_ADAPTER and returns the
// endpoint it talks to.
func newAIClient() (ai.GraphAIClient, string, error) {
	model := util.GetEnvString("AI_CHAT_MODEL", oai.DefaultModel)
	parallel := int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4))

	switch adapter := util.GetEnvString("AI_ADAPTER", "ollama"); adapter {
	case "ollama":
		baseURL := util.GetEnvString("AI_CHAT_URL", util.GetEnvString("OLLAMA_BASE_URL", defaultOllamaURL))
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			Model:   model,
			BaseURL: baseURL,
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: parallel,
		})
		if err != nil {
			return nil, "", err
		}
		return client, strings.TrimSuffix(client.BaseURL(), "/") + "/api/generate", nil

	case "openai":
		client := gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			Model:   model,
			ChatURL: util.GetEnv("AI_CHAT_URL"),
			ChatKey: util.GetEnv("AI_CHAT_KEY"),
		})
		target := client.BaseURL()
		if target == "" {
			target = "https://api.openai.com/v1"
		}
		return client, strings.TrimSuffix(target, "/") + "/chat/completions", nil

	default:
		return nil, "", errors.Newf("unknown AI_ADAPTER %q", adapter)
	}
}
