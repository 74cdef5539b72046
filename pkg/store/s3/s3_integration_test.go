//go:build integration
// +build integration

package s3

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
	storetesting "github.com/fredcicles/sas/pkg/store/testing"
)

// TestS3Store_Integration runs the hierarchical store contract suite
// against a real S3-compatible service (Localstack).
//
// Prerequisites:
//   - Localstack running on localhost:4566
//   - Run with: go test -tags=integration ./pkg/store/s3/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestS3Store_Integration(t *testing.T) {
	ctx := context.Background()

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			"test", "test", "",
		)),
	)
	require.NoError(t, err)

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.UsePathStyle = true // Required for Localstack
	})

	bucket := "sas-test-bucket"
	_, err = client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)

	// Each subtest gets its own key prefix so suite runs stay isolated
	// within the shared bucket.
	suite := &storetesting.StoreTestSuite{
		NewStore: func() store.HierarchicalStore {
			st, err := NewS3Store(ctx, S3StoreConfig{
				Client:    client,
				Bucket:    bucket,
				KeyPrefix: uuid.NewString(),
			})
			require.NoError(t, err)
			return st
		},
		AddFile: func(st store.HierarchicalStore, path string, length *int64) {
			var data []byte
			if length != nil {
				data = bytes.Repeat([]byte{0}, int(*length))
			}
			require.NoError(t, st.(*S3Store).PutFile(ctx, path, data))
		},
	}
	suite.Run(t)
}
