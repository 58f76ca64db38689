package minio

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"
	"treehouse-service/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var MinioClient *minio.Client

func InitMinioClient(cfg *config.MinIOConfig) error {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		log.Printf("Error initializing MinIO client: %v", err)
		return err
	}

	// Check if buckets exist and create them if they don't
	bucketsToCreate := []string{cfg.PictureBucket, cfg.ProfileBucket}
	for _, bucket := range bucketsToCreate {
		exists, err := MinioClient.BucketExists(context.Background(), bucket)
		if err != nil {
			log.Printf("Error checking if bucket %s exists: %v", bucket, err)
			return err
		}

		if !exists {
			err = MinioClient.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{
				Region: cfg.Region,
			})
			if err != nil {
				log.Printf("Error creating bucket %s: %v", bucket, err)
				return err
			}
			log.Printf("Created bucket: %s", bucket)
		}
	}

	log.Println("Successfully initialized MinIO client")
	return nil
}

// UploadStream streams an object into MinIO
func UploadStream(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) (minio.UploadInfo, error) {
	uploadInfo, err := MinioClient.PutObject(ctx, bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("Error uploading object to MinIO: %v", err)
		return minio.UploadInfo{}, err
	}

	return uploadInfo, nil
}

// GetPresignedURL generates a presigned URL for object access
func GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry int) (string, error) {
	// For security, validate the object name to prevent path traversal
	if strings.Contains(objectName, "..") {
		return "", errors.New("invalid object name")
	}

	presignedURL, err := MinioClient.PresignedGetObject(ctx, bucketName, objectName, time.Duration(expiry)*time.Second, nil)
	if err != nil {
		log.Printf("Error generating presigned URL: %v", err)
		return "", err
	}

	return presignedURL.String(), nil
}
