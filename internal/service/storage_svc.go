package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"storefront_dev_v1/internal/config"
)

// ==================== 接口定义 ====================

// StorageProvider 存储提供者接口
type StorageProvider interface {
	// Upload 上传文件，返回公开访问URL
	Upload(ctx context.Context, data []byte, key string, contentType string) (url string, err error)

	// Delete 删除文件，非本存储的 URL 忽略
	Delete(ctx context.Context, url string) error
}

var (
	ErrInvalidImage  = &ValidationError{Msg: "Invalid image"}
	ErrImageTooLarge = &ValidationError{Msg: "Image too large"}
)

// ==================== 工厂方法 ====================

// NewStorageProvider 按配置创建存储；local 的访问地址挂在 publicBaseURL/uploads 下
func NewStorageProvider(cfg config.StorageConfig, publicBaseURL string) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg, publicBaseURL)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== StorageService ====================

// StorageService 店铺 logo 等图片上传
type StorageService struct {
	provider StorageProvider
	basePath string
	maxBytes int64
	now      func() time.Time
}

// NewStorageService 创建存储服务
func NewStorageService(provider StorageProvider, cfg config.StorageConfig) *StorageService {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &StorageService{
		provider: provider,
		basePath: strings.Trim(cfg.BasePath, "/"),
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// IsDataURL 是否为 data:image/...;base64, 形式
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// SaveDataURL 保存 base64 data URL 图片，返回公开 URL
// 实际类型以内容嗅探为准，仅接受图片
func (s *StorageService) SaveDataURL(ctx context.Context, dataURL string, prefix string) (string, error) {
	idx := strings.Index(dataURL, ",")
	if !IsDataURL(dataURL) || idx == -1 || !strings.Contains(dataURL[:idx], ";base64") {
		return "", ErrInvalidImage
	}

	payload := dataURL[idx+1:]
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes+2 {
		return "", ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidImage
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrInvalidImage
	}

	key := s.generateKey(prefix, mt.Extension())
	url, err := s.provider.Upload(ctx, data, key, mt.String())
	if err != nil {
		return "", Internal("upload image", err)
	}
	return url, nil
}

// Delete 删除文件，失败只返回错误不影响调用方主流程
func (s *StorageService) Delete(ctx context.Context, url string) error {
	if url == "" || IsDataURL(url) {
		return nil
	}
	return s.provider.Delete(ctx, url)
}

// generateKey basePath/prefix/2006/01/02/uuid.ext
func (s *StorageService) generateKey(prefix, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	parts := make([]string, 0, 4)
	if s.basePath != "" {
		parts = append(parts, s.basePath)
	}
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, s.now().UTC().Format("2006/01/02"), uuid.New().String()+ext)
	return strings.Join(parts, "/")
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	cdnDomain string
}

// NewS3Storage 创建 S3 存储；配置了 Endpoint 时按 path-style 访问兼容服务（MinIO 等）
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		cdnDomain: cfg.CDNDomain,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, key string, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %v", err)
	}
	return s.publicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key := s.extractKey(url)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) baseURL() string {
	switch {
	case s.cdnDomain != "":
		return fmt.Sprintf("https://%s/", s.cdnDomain)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/", s.endpoint, s.bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	}
}

func (s *S3Storage) publicURL(key string) string {
	return s.baseURL() + key
}

func (s *S3Storage) extractKey(url string) string {
	base := s.baseURL()
	if !strings.HasPrefix(url, base) {
		return ""
	}
	return strings.TrimPrefix(url, base)
}

// ==================== 本地存储 (开发测试用) ====================

type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage 文件写入 cfg.LocalDir，由路由 /uploads 静态托管
func NewLocalStorage(cfg config.StorageConfig, publicBaseURL string) (*LocalStorage, error) {
	dir := cfg.LocalDir
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = strings.TrimRight(publicBaseURL, "/") + "/uploads"
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir 落盘目录
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Upload(_ context.Context, data []byte, key string, _ string) (string, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalStorage) Delete(_ context.Context, url string) error {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	path, err := s.pathFor(strings.TrimPrefix(url, prefix))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// pathFor key 不允许跳出根目录
func (s *LocalStorage) pathFor(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("无效的文件路径: %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
