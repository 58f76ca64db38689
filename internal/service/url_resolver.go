package service

import (
	"context"
	"log"
	"time"
	"treehouse-service/internal/config"
	"treehouse-service/internal/database/minio"
)

// urlCache is the slice of the Redis repository the resolver needs.
type urlCache interface {
	SaveString(ctx context.Context, key, value string, ltime time.Duration) (bool, error)
	GetString(ctx context.Context, key string) string
}

// URLResolver turns persisted object paths into presigned URLs at read
// time. Signed URLs expire, so documents only ever store the bucket
// and object path; resolved URLs live in Redis for half the signed
// lifetime, so a cached URL still has time left when it is served.
type URLResolver struct {
	cache   urlCache
	minIO   *config.MinIOConfig
	presign func(ctx context.Context, bucketName, objectName string, expiry int) (string, error)
}

func NewURLResolver(cache urlCache, minIO *config.MinIOConfig) *URLResolver {
	return &URLResolver{
		cache:   cache,
		minIO:   minIO,
		presign: minio.GetPresignedURL,
	}
}

// Resolve returns a presigned URL for an object, cache first. An empty
// bucket or path resolves to an empty URL.
func (r *URLResolver) Resolve(ctx context.Context, bucket, path string) string {
	if bucket == "" || path == "" {
		return ""
	}

	key := "url-cached:" + bucket + "/" + path
	if url := r.cache.GetString(ctx, key); url != "" {
		return url
	}

	url, err := r.presign(ctx, bucket, path, r.minIO.URLExpirySecs)
	if err != nil {
		log.Printf("Failed to presign %s/%s: %v", bucket, path, err)
		return ""
	}

	ttl := time.Duration(r.minIO.URLExpirySecs / 120)
	if ttl < 1 {
		ttl = 1
	}
	if _, err := r.cache.SaveString(ctx, key, url, ttl); err != nil {
		log.Printf("Failed to cache URL for %s/%s: %v", bucket, path, err)
	}

	return url
}

// ResolveAvatar resolves an object path in the profile bucket
func (r *URLResolver) ResolveAvatar(ctx context.Context, path string) string {
	return r.Resolve(ctx, r.minIO.ProfileBucket, path)
}

// ResolvePicture resolves an object path in the picture bucket
func (r *URLResolver) ResolvePicture(ctx context.Context, path string) string {
	return r.Resolve(ctx, r.minIO.PictureBucket, path)
}
