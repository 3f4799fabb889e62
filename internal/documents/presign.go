// Package documents hands out presigned S3 upload URLs for claim attachments.
// Claims only store the resulting object keys.
package documents

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/config"
)

const maxFilenameLen = 128

// allowed maps a lower-cased extension to the content types accepted for it.
var allowed = map[string][]string{
	".pdf":  {"application/pdf"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".txt":  {"text/plain"},
}

type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type PresignInput struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
}

type Upload struct {
	Key       string            `json:"key"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresIn int               `json:"expires_in"`
}

type Service struct {
	presigner Presigner
	bucket    string
	ttl       time.Duration
}

func NewService(p Presigner, bucket string, ttl time.Duration) *Service {
	return &Service{presigner: p, bucket: bucket, ttl: ttl}
}

// NewS3Service builds the presigner from the default AWS credential chain.
// Without a bucket the service stays up and every Presign call reports unavailable.
func NewS3Service(ctx context.Context, cfg config.Storage) (*Service, error) {
	if cfg.Bucket == "" {
		return &Service{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewService(s3.NewPresignClient(client), cfg.Bucket, cfg.PresignTTL), nil
}

func (s *Service) Enabled() bool { return s.presigner != nil && s.bucket != "" }

func (s *Service) Presign(ctx context.Context, userID string, in PresignInput) (*Upload, error) {
	if !s.Enabled() {
		return nil, apperr.New(apperr.ErrUnavailable, "document storage is not configured")
	}
	name, contentType, err := validate(in)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("claims/%s/%s/%s", userID, ulid.Make().String(), name)
	input := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		ContentType:          aws.String(contentType),
		Metadata:             map[string]string{"uploaded-by": userID},
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}
	req, err := s.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) { o.Expires = s.ttl })
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	headers := map[string]string{}
	for k, v := range req.SignedHeader {
		if strings.EqualFold(k, "host") || len(v) == 0 {
			continue
		}
		headers[k] = v[0]
	}
	return &Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		Headers:   headers,
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}

func validate(in PresignInput) (name, contentType string, err error) {
	name = sanitize(in.Filename)
	if name == "" || name == "." {
		return "", "", apperr.Validation("filename is required")
	}
	if len(name) > maxFilenameLen {
		return "", "", apperr.Validation("filename must be at most %d characters", maxFilenameLen)
	}
	accepted, ok := allowed[strings.ToLower(path.Ext(name))]
	if !ok {
		return "", "", apperr.Validation("only .pdf, .jpg, .jpeg, .png and .txt files are accepted")
	}
	contentType = strings.ToLower(strings.TrimSpace(in.ContentType))
	if contentType == "" {
		return name, accepted[0], nil
	}
	for _, t := range accepted {
		if t == contentType {
			return name, contentType, nil
		}
	}
	return "", "", apperr.Validation("content_type %q does not match %s", in.ContentType, path.Ext(name))
}

// sanitize keeps the base name and replaces anything outside [A-Za-z0-9._-].
func sanitize(filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if base == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
