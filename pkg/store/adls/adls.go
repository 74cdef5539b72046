// Package adls implements the hierarchical store against Azure Data Lake
// Storage Gen2. This is the production backend: ADLS Gen2 filesystems have
// a real hierarchical namespace with native directory metadata and POSIX
// ACLs, so the store maps almost one-to-one onto the service API.
package adls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/datalakeerror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/directory"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/filesystem"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/service"

	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/pkg/store"
)

// Options configures the connection to an ADLS Gen2 account. Exactly one
// credential source is used, tried in order: SASToken, StorageKey, client
// secret (TenantID/ClientID/ClientSecret), then the ambient credential
// chain (environment, managed identity, az login cache).
type Options struct {
	// StorageAccount is the storage account name. Required.
	StorageAccount string

	// Filesystem is the ADLS filesystem (container) name. Required.
	Filesystem string

	// StorageDomain overrides the endpoint suffix, e.g. for sovereign
	// clouds. Defaults to "dfs.core.windows.net".
	StorageDomain string

	// SASToken authenticates with a pre-signed SAS query string.
	SASToken string

	// StorageKey authenticates with the account shared key.
	StorageKey string

	// TenantID, ClientID and ClientSecret authenticate with a service
	// principal via Entra ID.
	TenantID     string
	ClientID     string
	ClientSecret string
}

// ADLSStore implements store.HierarchicalStore over an ADLS Gen2
// filesystem.
type ADLSStore struct {
	filesystemClient *filesystem.Client
	serviceURL       string
	filesystemName   string
}

var _ store.HierarchicalStore = (*ADLSStore)(nil)

// New connects to an ADLS Gen2 filesystem. The filesystem must already
// exist; the constructor probes it so misconfiguration surfaces at startup
// rather than on first request.
func New(ctx context.Context, opt Options) (*ADLSStore, error) {
	if opt.StorageAccount == "" {
		return nil, store.NewError(store.ErrInvalidArgument, "", "adls store: storage account is required")
	}
	if opt.Filesystem == "" {
		return nil, store.NewError(store.ErrInvalidArgument, "", "adls store: filesystem is required")
	}

	storageDomain := opt.StorageDomain
	if storageDomain == "" {
		storageDomain = "dfs.core.windows.net"
	}
	serviceURL := fmt.Sprintf("https://%s.%s", opt.StorageAccount, storageDomain)

	var (
		serviceClient *service.Client
		err           error
	)

	switch {
	case opt.SASToken != "":
		serviceClient, err = service.NewClientWithNoCredential(
			fmt.Sprintf("%s/?%s", serviceURL, strings.TrimPrefix(opt.SASToken, "?")), nil)

	case opt.StorageKey != "":
		var cred *azdatalake.SharedKeyCredential
		cred, err = azdatalake.NewSharedKeyCredential(opt.StorageAccount, opt.StorageKey)
		if err == nil {
			serviceClient, err = service.NewClientWithSharedKeyCredential(serviceURL+"/", cred, nil)
		}

	case opt.ClientSecret != "":
		var cred *azidentity.ClientSecretCredential
		cred, err = azidentity.NewClientSecretCredential(opt.TenantID, opt.ClientID, opt.ClientSecret, nil)
		if err == nil {
			serviceClient, err = service.NewClient(serviceURL+"/", cred, nil)
		}

	default:
		var cred *azidentity.DefaultAzureCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err == nil {
			serviceClient, err = service.NewClient(serviceURL+"/", cred, nil)
		}
	}

	if err != nil {
		return nil, store.WrapError(store.ErrTransport, "", err, "adls store: failed to build service client")
	}

	st := &ADLSStore{
		filesystemClient: serviceClient.NewFileSystemClient(opt.Filesystem),
		serviceURL:       serviceURL,
		filesystemName:   opt.Filesystem,
	}

	if _, err := st.filesystemClient.GetProperties(ctx, nil); err != nil {
		return nil, translateError(err, "")
	}

	logger.Info("ADLS store initialized: account=%s filesystem=%s", opt.StorageAccount, opt.Filesystem)
	return st, nil
}

func (s *ADLSStore) directoryClient(path string) *directory.Client {
	return s.filesystemClient.NewDirectoryClient(path)
}

// CreateDirectory implements store.HierarchicalStore. The If-None-Match
// condition makes the service reject the call when the path already exists
// instead of silently recreating it.
func (s *ADLSStore) CreateDirectory(ctx context.Context, path string) error {
	if path == "" {
		return store.NewError(store.ErrInvalidArgument, path, "directory path must not be empty")
	}

	_, err := s.directoryClient(path).Create(ctx, &directory.CreateOptions{
		AccessConditions: &directory.AccessConditions{
			ModifiedAccessConditions: &directory.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		},
	})
	return translateError(err, path)
}

// GetDirectoryProperties implements store.HierarchicalStore.
func (s *ADLSStore) GetDirectoryProperties(ctx context.Context, path string) (store.DirectoryProperties, error) {
	resp, err := s.directoryClient(path).GetProperties(ctx, nil)
	if err != nil {
		return store.DirectoryProperties{}, translateError(err, path)
	}

	metadata := make(map[string]string, len(resp.Metadata)+1)
	for k, v := range resp.Metadata {
		if v != nil {
			metadata[k] = *v
		}
	}
	// The service reports directories through this marker; guarantee it
	// even when the response omits it.
	metadata[store.DirectoryMarkerKey] = "true"

	var createdOn time.Time
	if resp.CreationTime != nil {
		createdOn = *resp.CreationTime
	}

	return store.DirectoryProperties{
		CreatedOn: createdOn,
		Metadata:  metadata,
	}, nil
}

// SetDirectoryMetadata implements store.HierarchicalStore. ADLS metadata
// writes are full replacements, matching the interface contract directly.
func (s *ADLSStore) SetDirectoryMetadata(ctx context.Context, path string, metadata map[string]string) error {
	if _, ok := metadata[store.DirectoryMarkerKey]; ok {
		return store.NewError(store.ErrInvalidArgument, path, "metadata must not include reserved key %q", store.DirectoryMarkerKey)
	}

	converted := make(map[string]*string, len(metadata))
	for k, v := range metadata {
		converted[k] = to.Ptr(v)
	}

	_, err := s.directoryClient(path).SetMetadata(ctx, converted, nil)
	return translateError(err, path)
}

// GetAccessControl implements store.HierarchicalStore. With
// resolveIdentities set, the service resolves object IDs to user principal
// names in the returned entries.
func (s *ADLSStore) GetAccessControl(ctx context.Context, path string, resolveIdentities bool) ([]store.AccessControlEntry, error) {
	var opts *directory.GetAccessControlOptions
	if resolveIdentities {
		opts = &directory.GetAccessControlOptions{UPN: to.Ptr(true)}
	}

	resp, err := s.directoryClient(path).GetAccessControl(ctx, opts)
	if err != nil {
		return nil, translateError(err, path)
	}

	var text string
	if resp.ACL != nil {
		text = *resp.ACL
	}
	return parseACL(text)
}

// UpdateAccessControlRecursive implements store.HierarchicalStore by
// delegating to the service-side recursive ACL update, which merges the
// given entries into the existing ACL of the path and all descendants.
func (s *ADLSStore) UpdateAccessControlRecursive(ctx context.Context, path string, entries []store.AccessControlEntry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := s.directoryClient(path).UpdateAccessControlRecursive(ctx, formatACL(entries), nil)
	return translateError(err, path)
}

// ListPaths implements store.HierarchicalStore.
func (s *ADLSStore) ListPaths(ctx context.Context, path string, recursive bool, includeDirectories bool, cb func(store.PathEntry) error) error {
	opts := &filesystem.ListPathsOptions{}
	trimPrefix := ""
	if path != "" {
		opts.Prefix = to.Ptr(path)
		trimPrefix = path + "/"
	}

	pager := s.filesystemClient.NewListPathsPager(recursive, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return translateError(err, path)
		}

		for _, item := range page.Paths {
			if item == nil || item.Name == nil {
				continue
			}

			name := strings.TrimPrefix(*item.Name, trimPrefix)
			if name == path {
				// The listed directory itself.
				continue
			}

			isDirectory := item.IsDirectory != nil && *item.IsDirectory
			if isDirectory && !includeDirectories {
				continue
			}

			entry := store.PathEntry{Name: name, IsDirectory: isDirectory}
			if !isDirectory {
				entry.ContentLength = item.ContentLength
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
func (s *ADLSStore) DirectoryURI(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.serviceURL, s.filesystemName, path)
}

// translateError maps SDK errors onto the store taxonomy.
func translateError(err error, path string) error {
	if err == nil {
		return nil
	}

	switch {
	case datalakeerror.HasCode(err, datalakeerror.PathNotFound),
		datalakeerror.HasCode(err, datalakeerror.BlobNotFound),
		datalakeerror.HasCode(err, datalakeerror.FileSystemNotFound):
		return store.NewError(store.ErrNotFound, path, "path not found")

	case datalakeerror.HasCode(err, datalakeerror.PathAlreadyExists),
		datalakeerror.HasCode(err, datalakeerror.ConditionNotMet):
		return store.NewError(store.ErrAlreadyExists, path, "path already exists")

	case datalakeerror.HasCode(err, datalakeerror.AuthorizationFailure),
		datalakeerror.HasCode(err, datalakeerror.AuthenticationFailed):
		return store.WrapError(store.ErrAccessDenied, path, err, "access denied")
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return store.WrapError(store.ErrUnexpectedStatus, path, err,
			fmt.Sprintf("unexpected status %d from storage service", respErr.StatusCode))
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return store.WrapError(store.ErrTransport, path, err, "adls operation failed")
}
