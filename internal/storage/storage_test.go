package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// exerciseStore runs the KeyValueStore contract against store.
func exerciseStore(t *testing.T, store KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok %v, err %v", ok, err)
	}
	if string(got) != "two" {
		t.Fatalf("Get(k) = %q, want %q", got, "two")
	}

	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected key to be removed")
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove of absent key should succeed: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")
	if err := store.Set(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'z'
	got, _, _ := store.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "nested", "kv.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kv.db")

	store, err := NewSQLiteStore(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "sessions-store", []byte(`{"version":2}`)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, ok, err := reopened.Get(ctx, "sessions-store")
	if err != nil || !ok || string(got) != `{"version":2}` {
		t.Fatalf("after reopen got %q ok=%v err=%v", got, ok, err)
	}
}

func TestQuotaStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := WithQuota(inner, 4)

	if err := store.Set(ctx, "k", []byte("1234")); err != nil {
		t.Fatalf("value at the limit should be accepted: %v", err)
	}
	err := store.Set(ctx, "k", []byte("12345"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	got, _, _ := store.Get(ctx, "k")
	if string(got) != "1234" {
		t.Fatalf("rejected write must not modify stored value, got %q", got)
	}

	if WithQuota(inner, 0) != KeyValueStore(inner) {
		t.Error("zero quota should return the store unchanged")
	}
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := &S3Store{client: fake, bucketName: "bucket", prefix: "climb"}
	exerciseStore(t, store)

	if err := store.Set(context.Background(), "theme-store", []byte("dark")); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["climb/theme-store"]; !ok {
		t.Fatalf("expected prefixed object key, have %v", fake.objects)
	}
}

func TestS3StoreClassifiesWriteErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"entity too large", &smithy.GenericAPIError{Code: "EntityTooLarge"}, ErrQuotaExceeded},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, ErrUnavailable},
		{"network", errors.New("connection refused"), ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &S3Store{client: &fakeS3{objects: map[string][]byte{}, putErr: tt.err}, bucketName: "bucket"}
			err := store.Set(context.Background(), "k", []byte("v"))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
