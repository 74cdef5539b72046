// Package s3 implements a hierarchical store emulation over S3-compatible
// object storage (AWS S3, MinIO, LocalStack).
//
// S3 has no native hierarchical namespace, directory metadata or POSIX
// ACLs, so this backend emulates them the way flat object stores usually
// do:
//
//   - A directory is a zero-byte marker object whose key ends in "/".
//   - The directory's catalog record (creation time, metadata bag, ACL) is
//     JSON-encoded into a single user-metadata entry on the marker object.
//     A single entry sidesteps S3's lowercasing of user-metadata keys,
//     which would otherwise mangle the bag's key casing.
//   - Shallow listings use delimiter queries; common prefixes become
//     directory entries.
//
// This backend targets development and on-premises S3-compatible
// deployments; the ADLS backend is the production target.
package s3

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/pkg/store"
)

// recordMetadataKey is the user-metadata entry holding the JSON-encoded
// directory record on a marker object.
const recordMetadataKey = "catalog-record"

// S3StoreConfig configures an S3Store.
type S3StoreConfig struct {
	// Client is a fully configured S3 client. Required.
	Client *s3.Client

	// Bucket is the bucket holding the namespace. Required.
	Bucket string

	// KeyPrefix is prepended to all object keys, allowing multiple
	// namespaces to share one bucket. Normalized to end with "/" when set.
	KeyPrefix string
}

// S3Store implements store.HierarchicalStore over an S3 bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	clock     func() time.Time
}

var _ store.HierarchicalStore = (*S3Store)(nil)

// NewS3Store creates an S3-backed hierarchical store. The bucket must
// already exist; the constructor probes it to fail fast on configuration
// errors.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	if cfg.Client == nil {
		return nil, store.NewError(store.ErrInvalidArgument, "", "s3 store: client is required")
	}
	if cfg.Bucket == "" {
		return nil, store.NewError(store.ErrInvalidArgument, "", "s3 store: bucket is required")
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix != "" && !strings.HasSuffix(keyPrefix, "/") {
		keyPrefix += "/"
	}

	st := &S3Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: keyPrefix,
		clock:     time.Now,
	}

	if _, err := st.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(st.bucket)}); err != nil {
		return nil, store.WrapError(store.ErrTransport, "", err, "s3 store: bucket probe failed")
	}

	logger.Info("S3 store initialized: bucket=%s prefix=%s", st.bucket, st.keyPrefix)
	return st, nil
}

func (s *S3Store) markerKey(path string) string {
	return s.keyPrefix + path + "/"
}

// CreateDirectory implements store.HierarchicalStore.
func (s *S3Store) CreateDirectory(ctx context.Context, path string) error {
	if path == "" {
		return store.NewError(store.ErrInvalidArgument, path, "directory path must not be empty")
	}

	if _, err := s.headMarker(ctx, path); err == nil {
		return store.NewError(store.ErrAlreadyExists, path, "path already exists")
	} else if !store.IsCode(err, store.ErrNotFound) {
		return err
	}

	record := &directoryRecord{
		CreatedOn: s.clock().UTC(),
		Metadata:  map[string]string{},
	}

	return s.putMarker(ctx, path, record)
}

// GetDirectoryProperties implements store.HierarchicalStore.
func (s *S3Store) GetDirectoryProperties(ctx context.Context, path string) (store.DirectoryProperties, error) {
	record, err := s.getRecord(ctx, path)
	if err != nil {
		return store.DirectoryProperties{}, err
	}

	metadata := make(map[string]string, len(record.Metadata)+1)
	for k, v := range record.Metadata {
		metadata[k] = v
	}
	metadata[store.DirectoryMarkerKey] = "true"

	return store.DirectoryProperties{
		CreatedOn: record.CreatedOn,
		Metadata:  metadata,
	}, nil
}

// SetDirectoryMetadata implements store.HierarchicalStore. The record is
// rewritten with a self-copy using the REPLACE metadata directive, the S3
// idiom for replacing object metadata in place.
func (s *S3Store) SetDirectoryMetadata(ctx context.Context, path string, metadata map[string]string) error {
	if _, ok := metadata[store.DirectoryMarkerKey]; ok {
		return store.NewError(store.ErrInvalidArgument, path, "metadata must not include reserved key %q", store.DirectoryMarkerKey)
	}

	record, err := s.getRecord(ctx, path)
	if err != nil {
		return err
	}

	record.Metadata = make(map[string]string, len(metadata))
	for k, v := range metadata {
		record.Metadata[k] = v
	}

	return s.replaceMarker(ctx, path, record)
}

// GetAccessControl implements store.HierarchicalStore. There is no identity
// directory to resolve against; entity IDs come back as stored.
func (s *S3Store) GetAccessControl(ctx context.Context, path string, resolveIdentities bool) ([]store.AccessControlEntry, error) {
	record, err := s.getRecord(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeACL(record.ACL)
}

// UpdateAccessControlRecursive implements store.HierarchicalStore. The
// entries merge into the marker record of the path and of every descendant
// directory; file objects carry no ACL record in this emulation.
func (s *S3Store) UpdateAccessControlRecursive(ctx context.Context, path string, entries []store.AccessControlEntry) error {
	if err := s.mergeIntoMarker(ctx, path, entries); err != nil {
		return err
	}

	prefix := s.keyPrefix + path + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return translateError(err, path)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, "/") {
				continue
			}
			descendant := strings.TrimSuffix(strings.TrimPrefix(key, s.keyPrefix), "/")
			if err := s.mergeIntoMarker(ctx, descendant, entries); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *S3Store) mergeIntoMarker(ctx context.Context, path string, entries []store.AccessControlEntry) error {
	record, err := s.getRecord(ctx, path)
	if err != nil {
		return err
	}

	existing, err := decodeACL(record.ACL)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		replaced := false
		for i, have := range existing {
			if have.Kind == entry.Kind && have.EntityID == entry.EntityID && have.DefaultScope == entry.DefaultScope {
				existing[i].Permissions = entry.Permissions
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, entry)
		}
	}

	record.ACL = encodeACL(existing)
	return s.replaceMarker(ctx, path, record)
}

// ListPaths implements store.HierarchicalStore. Shallow listings use a
// delimiter query; common prefixes surface as directory entries. Entries
// follow S3's lexical key order.
func (s *S3Store) ListPaths(ctx context.Context, path string, recursive bool, includeDirectories bool, cb func(store.PathEntry) error) error {
	prefix := s.keyPrefix
	if path != "" {
		if _, err := s.headMarker(ctx, path); err != nil {
			return err
		}
		prefix = s.keyPrefix + path + "/"
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if !recursive {
		input.Delimiter = aws.String("/")
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return translateError(err, path)
		}

		if !recursive && includeDirectories {
			for _, commonPrefix := range page.CommonPrefixes {
				name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(commonPrefix.Prefix), s.keyPrefix), "/")
				err := cb(store.PathEntry{Name: name, IsDirectory: true})
				if err == store.ErrStopIteration {
					return nil
				}
				if err != nil {
					return err
				}
			}
		}

		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			isMarker := strings.HasSuffix(key, "/")
			if isMarker && (!includeDirectories || !recursive) {
				// Shallow directory entries already came from the common
				// prefixes above.
				continue
			}

			entry := store.PathEntry{
				Name:        strings.TrimSuffix(strings.TrimPrefix(key, s.keyPrefix), "/"),
				IsDirectory: isMarker,
			}
			if !isMarker {
				entry.ContentLength = object.Size
			}

			err := cb(entry)
			if err == store.ErrStopIteration {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// DirectoryURI implements store.HierarchicalStore.
func (s *S3Store) DirectoryURI(path string) string {
	return "s3://" + s.bucket + "/" + s.keyPrefix + path
}

// PutFile writes a file object at path. Dev/seeding hook; not part of the
// HierarchicalStore contract.
func (s *S3Store) PutFile(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyPrefix + path),
		Body:   bytes.NewReader(data),
	})
	return translateError(err, path)
}

func (s *S3Store) headMarker(ctx context.Context, path string) (*s3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.markerKey(path)),
	})
	if err != nil {
		return nil, translateError(err, path)
	}
	return out, nil
}

func (s *S3Store) getRecord(ctx context.Context, path string) (*directoryRecord, error) {
	out, err := s.headMarker(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeRecord(out.Metadata[recordMetadataKey], path)
}

func (s *S3Store) putMarker(ctx context.Context, path string, record *directoryRecord) error {
	encoded, err := encodeRecord(record, path)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(s.markerKey(path)),
		Body:     bytes.NewReader(nil),
		Metadata: map[string]string{recordMetadataKey: encoded},
	})
	return translateError(err, path)
}

func (s *S3Store) replaceMarker(ctx context.Context, path string, record *directoryRecord) error {
	encoded, err := encodeRecord(record, path)
	if err != nil {
		return err
	}

	key := s.markerKey(path)
	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(key),
		CopySource:        aws.String(s.bucket + "/" + key),
		Metadata:          map[string]string{recordMetadataKey: encoded},
		MetadataDirective: types.MetadataDirectiveReplace,
	})
	return translateError(err, path)
}

// translateError maps AWS SDK errors onto the store taxonomy.
func translateError(err error, path string) error {
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return store.NewError(store.ErrNotFound, path, "path not found")
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return store.WrapError(store.ErrTransport, path, err, "s3 operation failed")
}
