package mediastore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panotour/core/internal/config"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "images/avatar/a.png", want: "images/avatar/a.png"},
		{in: "/images//avatar/a.png", want: "images/avatar/a.png"},
		{in: "images\\company\\b.jpg", want: "images/company/b.jpg"},
		{in: "../../etc/passwd", want: "etc/passwd"},
		{in: "   ", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeKey(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeKey(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestLocalPutDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root)
	ctx := context.Background()

	url, err := store.Put(ctx, "images/avatar/u1.png", strings.NewReader("png"), 3, "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/images/avatar/u1.png" {
		t.Errorf("url = %q", url)
	}
	data, err := os.ReadFile(filepath.Join(root, "images", "avatar", "u1.png"))
	if err != nil || string(data) != "png" {
		t.Fatalf("stored content = %q, %v", data, err)
	}

	key, ok := store.Key(url)
	if !ok || key != "images/avatar/u1.png" {
		t.Errorf("Key(%q) = %q, %v", url, key, ok)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestNewS3(t *testing.T) {
	if _, err := NewS3(config.S3Options{Bucket: "b"}); err == nil {
		t.Fatal("expected error for incomplete options")
	}

	store, err := NewS3(config.S3Options{
		Bucket:          "tours",
		Region:          "us-east-1",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		Endpoint:        "minio.local:9000",
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if store.base != "https://minio.local:9000/tours" {
		t.Errorf("base = %q", store.base)
	}
	key, ok := store.Key("https://minio.local:9000/tours/images/a.png")
	if !ok || key != "images/a.png" {
		t.Errorf("Key = %q, %v", key, ok)
	}
	if _, ok := store.Key("https://elsewhere/images/a.png"); ok {
		t.Error("foreign URL should not map to a key")
	}
}

func TestImageExt(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		ok   bool
	}{
		{"pano.JPG", ".jpg", true},
		{"a.jpeg", ".jpeg", true},
		{"b.png", ".png", true},
		{"c.gif", ".gif", true},
		{"d.webp", ".webp", false},
		{"noext", "", false},
		{"evil.png.exe", ".exe", false},
	}
	for _, tt := range tests {
		ext, ok := ImageExt(tt.name)
		if ext != tt.ext || ok != tt.ok {
			t.Errorf("ImageExt(%q) = %q, %v; want %q, %v", tt.name, ext, ok, tt.ext, tt.ok)
		}
	}
}
