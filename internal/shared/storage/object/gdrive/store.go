package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"resume-optimizer/internal/shared/storage/object"
	"resume-optimizer/internal/shared/util"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Options configures service-account access to a Drive root folder.
type Options struct {
	RootFolderID string
	ClientEmail  string
	PrivateKey   string
	// Endpoint overrides the Drive API base URL (tests).
	Endpoint string
}

// files is the subset of the Drive files API the store needs.
type files interface {
	findFolder(ctx context.Context, parentID, name string) (string, error)
	createFolder(ctx context.Context, parentID, name string) (string, error)
	upload(ctx context.Context, parentID, name, contentType string, r io.Reader) (string, error)
	count(ctx context.Context, parentID string) (int, error)
}

// Store implements object.Store and object.Counter on Google Drive.
// Folder ids are resolved once and cached.
type Store struct {
	api    files
	rootID string

	mu      sync.Mutex
	folders map[string]string
}

// New builds a Drive-backed store authenticated with a service account.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.RootFolderID) == "" {
		return nil, errors.New("drive root folder id is required")
	}
	if strings.TrimSpace(opts.ClientEmail) == "" || strings.TrimSpace(opts.PrivateKey) == "" {
		return nil, errors.New("drive service account credentials are required")
	}

	conf := &jwt.Config{
		Email:      opts.ClientEmail,
		PrivateKey: []byte(opts.PrivateKey),
		Scopes:     []string{drive.DriveScope},
		TokenURL:   google.JWTTokenURL,
	}
	clientOpts := []option.ClientOption{option.WithHTTPClient(conf.Client(ctx))}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return newStore(driveFiles{svc: svc}, opts.RootFolderID), nil
}

func newStore(api files, rootID string) *Store {
	return &Store{api: api, rootID: rootID, folders: make(map[string]string)}
}

// EnsureFolders gets or creates the archive folders under the root concurrently.
func (s *Store) EnsureFolders(ctx context.Context, names ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			_, err := s.folderID(gctx, name)
			return err
		})
	}
	return g.Wait()
}

// Put uploads the reader into the named folder.
func (s *Store) Put(ctx context.Context, folder, name, contentType string, r io.Reader) (string, error) {
	sanitized, err := util.SanitizeFileName(name)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	parentID, err := s.folderID(ctx, folder)
	if err != nil {
		return "", err
	}
	id, err := s.api.upload(ctx, parentID, sanitized, contentType, r)
	if err != nil {
		return "", fmt.Errorf("drive upload folder=%s name=%s: %w", folder, sanitized, err)
	}
	return id, nil
}

// Count returns the number of non-trashed files in the folder.
func (s *Store) Count(ctx context.Context, folder string) (int, error) {
	parentID, err := s.folderID(ctx, folder)
	if err != nil {
		return 0, err
	}
	n, err := s.api.count(ctx, parentID)
	if err != nil {
		return 0, fmt.Errorf("drive count folder=%s: %w", folder, err)
	}
	return n, nil
}

func (s *Store) folderID(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/\\'") {
		return "", object.ErrInvalidKey
	}

	s.mu.Lock()
	id, ok := s.folders[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := s.api.findFolder(ctx, s.rootID, name)
	if err != nil {
		return "", fmt.Errorf("drive find folder %s: %w", name, err)
	}
	if id == "" {
		id, err = s.api.createFolder(ctx, s.rootID, name)
		if err != nil {
			return "", fmt.Errorf("drive create folder %s: %w", name, err)
		}
	}

	s.mu.Lock()
	// Another caller may have resolved it meanwhile; keep the first id.
	if existing, ok := s.folders[name]; ok {
		id = existing
	} else {
		s.folders[name] = id
	}
	s.mu.Unlock()
	return id, nil
}

type driveFiles struct {
	svc *drive.Service
}

func (d driveFiles) findFolder(ctx context.Context, parentID, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false", name, folderMimeType, parentID)
	list, err := d.svc.Files.List().
		Q(q).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (d driveFiles) createFolder(ctx context.Context, parentID, name string) (string, error) {
	f, err := d.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (d driveFiles) upload(ctx context.Context, parentID, name, contentType string, r io.Reader) (string, error) {
	f, err := d.svc.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parentID},
	}).Media(r, googleapi.ContentType(contentType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (d driveFiles) count(ctx context.Context, parentID string) (int, error) {
	total := 0
	err := d.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", parentID)).
		Fields("nextPageToken, files(id)").
		PageSize(1000).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			total += len(page.Files)
			return nil
		})
	if err != nil {
		return 0, err
	}
	return total, nil
}

var (
	_ object.Store   = (*Store)(nil)
	_ object.Counter = (*Store)(nil)
)
