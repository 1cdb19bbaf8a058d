package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/timmy/reelsearch/internal/config"
)

func TestDetectStorageType(t *testing.T) {
	tests := []struct {
		endpoint string
		want     StorageType
	}{
		{"https://abc123.r2.cloudflarestorage.com", StorageTypeR2},
		{"s3.eu-west-1.amazonaws.com", StorageTypeS3},
		{"localhost:9000", StorageTypeS3Compatible},
		{"", StorageTypeS3Compatible},
	}
	for _, tt := range tests {
		if got := detectStorageType(tt.endpoint); got != tt.want {
			t.Errorf("detectStorageType(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://minio.local:9000/", "minio.local:9000"},
		{"http://minio.local:9000/bucket/path", "minio.local:9000"},
		{"minio.local:9000", "minio.local:9000"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := endpointURL("minio.local:9000", false); got != "http://minio.local:9000" {
		t.Errorf("unexpected endpoint url %q", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", &types.NoSuchKey{})) {
		t.Error("expected NoSuchKey to be not found")
	}
	if !isNotFound(&types.NotFound{}) {
		t.Error("expected NotFound to be not found")
	}
	if isNotFound(errors.New("access denied")) {
		t.Error("did not expect generic error to be not found")
	}
}

func TestNewStorage(t *testing.T) {
	if _, err := NewStorage(&config.StorageConfig{Endpoint: "localhost:9000"}); err == nil {
		t.Error("expected error without bucket")
	}

	s, err := NewStorage(&config.StorageConfig{
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "reelsearch",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s3s, ok := s.(*S3Storage)
	if !ok {
		t.Fatalf("expected *S3Storage, got %T", s)
	}
	if s3s.storeType != StorageTypeS3Compatible {
		t.Errorf("expected s3compatible store, got %q", s3s.storeType)
	}
}
