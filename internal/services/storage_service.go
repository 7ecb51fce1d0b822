// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/config"
	"github.com/javajoker/placement-backend/internal/models"
)

const (
	UploadCategoryDocuments   = "documents"
	UploadCategorySubmissions = "submissions"
)

// StorageService keeps uploaded bytes outside the engine and hands back a
// FileRef. It uses S3 when credentials are configured and a local directory
// otherwise.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Local development stores uploads on disk
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

func (s *StorageService) Store(ctx context.Context, file multipart.File, header *multipart.FileHeader, options UploadOptions) (*models.FileRef, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, apperror.Validation(fmt.Sprintf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, options.MaxSize))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(options.AllowedTypes) > 0 && !contains(options.AllowedTypes, ext) {
		return nil, apperror.Validation(fmt.Sprintf("file type %s is not allowed", ext))
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.Validation("failed to read upload")
	}
	if len(fileBytes) == 0 {
		return nil, apperror.Validation("file is empty")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(fileBytes)
	}

	key := s.generateKey(header.Filename, options.Folder)
	ref := &models.FileRef{
		Key:         key,
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Size:        int64(len(fileBytes)),
	}

	if s.s3Client != nil {
		ref.URL, err = s.uploadToS3(ctx, fileBytes, key, contentType)
	} else {
		ref.URL, err = s.uploadToLocal(fileBytes, key)
	}
	if err != nil {
		return nil, apperror.Unavailable("file storage failed", err)
	}

	logrus.WithFields(logrus.Fields{
		"key":  key,
		"size": ref.Size,
	}).Debug("Upload stored")

	return ref, nil
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.getS3URL(key), nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key string) (string, error) {
	path := filepath.Join(s.config.AWS.LocalUploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s", strings.TrimRight(s.config.AWS.PublicBaseURL, "/"), key), nil
}

// Delete removes a stored object. It is used to clean up after an upload
// whose record update was refused.
func (s *StorageService) Delete(ctx context.Context, ref *models.FileRef) error {
	if ref.Empty() || ref.Key == "" {
		return nil
	}

	if s.s3Client == nil {
		path := filepath.Join(s.config.AWS.LocalUploadDir, filepath.FromSlash(ref.Key))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete local file: %w", err)
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// URLFor returns a link to stored content. S3 objects get a presigned link
// valid for ttl; local uploads and external refs are returned as stored.
func (s *StorageService) URLFor(ref *models.FileRef, ttl time.Duration) (string, error) {
	if ref.Empty() {
		return "", apperror.NotFound("document not uploaded")
	}
	if s.s3Client == nil || ref.Key == "" {
		return ref.URL, nil
	}
	url, err := s.GeneratePresignedURL(ref.Key, ttl)
	if err != nil {
		return "", apperror.Unavailable("file storage failed", err)
	}
	return url, nil
}

func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

func (s *StorageService) GetDefaultUploadOptions(category string) UploadOptions {
	switch category {
	case UploadCategoryDocuments:
		return UploadOptions{
			Folder:       "documents",
			MaxSize:      10 * 1024 * 1024, // 10MB
			AllowedTypes: []string{".pdf", ".jpg", ".jpeg", ".png"},
		}
	case UploadCategorySubmissions:
		return UploadOptions{
			Folder:       "submissions",
			MaxSize:      25 * 1024 * 1024, // 25MB
			AllowedTypes: []string{".pdf", ".jpg", ".jpeg", ".png", ".zip", ".doc", ".docx", ".ppt", ".pptx", ".txt", ".md"},
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".pdf"},
		}
	}
}

func (s *StorageService) generateKey(originalName, folder string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, uuid.NewString(), ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}
	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
