package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const (
	// Every invocation writes to this name, replacing the previous chart.
	ObjectName = "test.png"

	ContentTypePNG = "image/png"
)

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Object struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
	PublicRead  bool
}

type Uploader struct {
	client PutObjectAPI
}

func NewUploader(client PutObjectAPI) *Uploader {
	return &Uploader{client: client}
}

func NewUploaderFromConfig(cfg aws.Config) *Uploader {
	return NewUploader(s3.NewFromConfig(cfg))
}

// UploadImage puts obj in a single request. No retry beyond the SDK's own.
func (u *Uploader) UploadImage(ctx context.Context, obj Object) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
	}
	if obj.PublicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	_, err := u.client.PutObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("put s3://%s/%s: %s: %w", obj.Bucket, obj.Key, apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("put s3://%s/%s: %w", obj.Bucket, obj.Key, err)
	}
	return nil
}

// ObjectKey is the fixed key under directory, joined verbatim.
func ObjectKey(directory string) string {
	return directory + "/" + ObjectName
}
