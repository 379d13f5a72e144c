package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfbooklet/internal/config"
)

// Store reads source documents and delivers finished ones.
type Store struct {
	cfg  config.StorageConfig
	http *http.Client

	once  sync.Once
	s3    *s3.Client
	s3Err error
}

// New creates a Store. The S3 client is only built on first s3:// use.
func New(cfg config.StorageConfig) *Store {
	return &Store{cfg: cfg, http: &http.Client{Timeout: cfg.FetchTimeout}}
}

func (s *Store) client(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		var opts []func(*awscfg.LoadOptions) error
		if s.cfg.Region != "" {
			opts = append(opts, awscfg.WithRegion(s.cfg.Region))
		}
		if s.cfg.AccessKeyID != "" && s.cfg.SecretAccessKey != "" {
			opts = append(opts, awscfg.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, "")))
		}
		cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			s.s3Err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		s.s3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if s.cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			}
			o.UsePathStyle = s.cfg.UsePathStyle
		})
	})
	return s.s3, s.s3Err
}

// Fetch returns the bytes of the referenced document.
func (s *Store) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	switch ref.Scheme {
	case SchemeS3:
		return s.fetchS3(ctx, ref)
	case SchemeHTTP:
		return s.fetchHTTP(ctx, ref)
	default:
		return os.ReadFile(ref.Path)
	}
}

func (s *Store) fetchHTTP(ctx context.Context, ref Ref) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: http %d", ref.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.URL, err)
	}
	log.Info().Str("url", ref.URL).Int("size", len(data)).Msg("downloaded source pdf")
	return data, nil
}

func (s *Store) fetchS3(ctx context.Context, ref Ref) ([]byte, error) {
	cli, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	buf := manager.NewWriteAtBuffer(nil)
	n, err := manager.NewDownloader(cli).Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	log.Info().Str("bucket", ref.Bucket).Str("key", ref.Key).Int64("size", n).Msg("downloaded s3 pdf")
	return buf.Bytes(), nil
}

// Target is a place to write a finished document before it is committed.
type Target struct {
	dest  Ref
	local string
	temp  bool
}

// Path is the local file the document should be written to.
func (t *Target) Path() string { return t.local }

// Dest is the final destination.
func (t *Target) Dest() Ref { return t.dest }

// Prepare returns a Target for dest. Local destinations are written in place
// (the writer renames atomically); remote ones are staged in a temp file.
func (s *Store) Prepare(dest Ref) (*Target, error) {
	switch dest.Scheme {
	case SchemeS3:
		local := filepath.Join(os.TempDir(), "booklet-"+uuid.NewString()+".pdf")
		return &Target{dest: dest, local: local, temp: true}, nil
	case SchemeHTTP:
		return nil, fmt.Errorf("cannot write to %s: http destinations are read only", dest.URL)
	default:
		if dir := filepath.Dir(dest.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		return &Target{dest: dest, local: dest.Path}, nil
	}
}

// Commit delivers a written target. For S3 the staged file is uploaded and
// removed; local targets are already in place.
func (s *Store) Commit(ctx context.Context, t *Target) error {
	if t.dest.Scheme != SchemeS3 {
		return nil
	}
	defer s.Discard(t)

	cli, err := s.client(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(t.local)
	if err != nil {
		return err
	}
	defer f.Close()

	uploader := manager.NewUploader(cli, func(u *manager.Uploader) {
		u.PartSize = int64(s.cfg.PartSizeMB) * 1024 * 1024
	})
	out, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.dest.Bucket),
		Key:         aws.String(t.dest.Key),
		Body:        f,
		ContentType: aws.String("application/pdf"),
		Metadata:    map[string]string{"generator": "pdfbooklet"},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	log.Info().Str("bucket", t.dest.Bucket).Str("key", t.dest.Key).Str("location", out.Location).Msg("uploaded booklet to s3")
	return nil
}

// Discard removes a staged temp file. It is a no-op for local targets.
func (s *Store) Discard(t *Target) {
	if t != nil && t.temp {
		_ = os.Remove(t.local)
	}
}
