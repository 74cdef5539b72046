package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsRetry "github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/internal/retry"
	"github.com/fredcicles/sas/pkg/store"
	"github.com/fredcicles/sas/pkg/store/adls"
	"github.com/fredcicles/sas/pkg/store/badger"
	"github.com/fredcicles/sas/pkg/store/memory"
	"github.com/fredcicles/sas/pkg/store/retrying"
	storeS3 "github.com/fredcicles/sas/pkg/store/s3"
)

// CreateStore creates a hierarchical store backend based on configuration.
//
// This factory function uses the Type field to determine which backend to
// create, then decodes the type-specific configuration from the
// corresponding map and passes it to the backend's constructor.
//
// Supported types:
//   - "memory": in-memory storage, ephemeral (development and tests)
//   - "badger": BadgerDB storage, persistent single-node
//   - "s3": S3-compatible object storage (AWS, MinIO, Localstack)
//   - "adls": Azure Data Lake Storage Gen2 (production)
//
// When retries are enabled, the backend is wrapped in the retrying
// decorator before being returned.
func CreateStore(ctx context.Context, cfg *StoreConfig) (store.HierarchicalStore, error) {
	var (
		st  store.HierarchicalStore
		err error
	)

	switch cfg.Type {
	case "memory":
		st, err = createMemoryStore(ctx, cfg.Memory)
	case "badger":
		st, err = createBadgerStore(ctx, cfg.Badger)
	case "s3":
		st, err = createS3Store(ctx, cfg.S3)
	case "adls":
		st, err = createADLSStore(ctx, cfg.ADLS)
	default:
		return nil, fmt.Errorf("unknown store type: %q (supported: memory, badger, s3, adls)", cfg.Type)
	}

	if err != nil {
		return nil, err
	}

	if cfg.Retry.Enabled {
		st = retrying.NewWrapper(st, retry.Options{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialSleep: cfg.Retry.InitialSleep,
			MaxSleep:     cfg.Retry.MaxSleep,
		})
		logger.Info("Store retries enabled: max_attempts=%d", cfg.Retry.MaxAttempts)
	}

	return st, nil
}

// createMemoryStore creates an in-memory store.
func createMemoryStore(ctx context.Context, options map[string]any) (store.HierarchicalStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type MemoryStoreOptions struct {
		BaseURI string `mapstructure:"base_uri"`
	}

	var storeOpts MemoryStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode memory store options: %w", err)
	}

	return memory.NewMemoryStore(memory.MemoryStoreConfig{BaseURI: storeOpts.BaseURI}), nil
}

// createBadgerStore creates a BadgerDB-backed persistent store.
func createBadgerStore(ctx context.Context, options map[string]any) (store.HierarchicalStore, error) {
	type BadgerStoreOptions struct {
		DBPath   string `mapstructure:"db_path"`
		BaseURI  string `mapstructure:"base_uri"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeOpts BadgerStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger store options: %w", err)
	}

	st, err := badger.NewBadgerStore(ctx, badger.BadgerStoreConfig{
		DBPath:   storeOpts.DBPath,
		BaseURI:  storeOpts.BaseURI,
		InMemory: storeOpts.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}

	return st, nil
}

// createS3Store creates an S3-backed store.
func createS3Store(ctx context.Context, options map[string]any) (store.HierarchicalStore, error) {
	type S3StoreOptions struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeOpts S3StoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 store options: %w", err)
	}

	if storeOpts.Bucket == "" {
		return nil, fmt.Errorf("S3 store: bucket is required")
	}
	if storeOpts.Region == "" {
		return nil, fmt.Errorf("S3 store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(storeOpts.Region))

	// Custom endpoint for MinIO, Localstack, etc.
	if storeOpts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeOpts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain
	if storeOpts.AccessKeyID != "" && storeOpts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeOpts.AccessKeyID,
			storeOpts.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeOpts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return awsRetry.NewStandard(func(o *awsRetry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack
		if storeOpts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	st, err := storeS3.NewS3Store(ctx, storeS3.S3StoreConfig{
		Client:    client,
		Bucket:    storeOpts.Bucket,
		KeyPrefix: storeOpts.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}

	return st, nil
}

// createADLSStore creates an Azure Data Lake Gen2 store.
func createADLSStore(ctx context.Context, options map[string]any) (store.HierarchicalStore, error) {
	type ADLSStoreOptions struct {
		StorageAccount string `mapstructure:"storage_account"`
		Filesystem     string `mapstructure:"filesystem"`
		StorageDomain  string `mapstructure:"storage_domain"`
		SASToken       string `mapstructure:"sas_token"`
		StorageKey     string `mapstructure:"storage_key"`
		TenantID       string `mapstructure:"tenant_id"`
		ClientID       string `mapstructure:"client_id"`
		ClientSecret   string `mapstructure:"client_secret"`
	}

	var storeOpts ADLSStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode ADLS store options: %w", err)
	}

	if storeOpts.StorageAccount == "" {
		return nil, fmt.Errorf("ADLS store: storage_account is required")
	}
	if storeOpts.Filesystem == "" {
		return nil, fmt.Errorf("ADLS store: filesystem is required")
	}

	st, err := adls.New(ctx, adls.Options{
		StorageAccount: storeOpts.StorageAccount,
		Filesystem:     storeOpts.Filesystem,
		StorageDomain:  storeOpts.StorageDomain,
		SASToken:       storeOpts.SASToken,
		StorageKey:     storeOpts.StorageKey,
		TenantID:       storeOpts.TenantID,
		ClientID:       storeOpts.ClientID,
		ClientSecret:   storeOpts.ClientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ADLS store: %w", err)
	}

	return st, nil
}
