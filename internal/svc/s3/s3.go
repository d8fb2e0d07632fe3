package s3

import (
	"context"
	"io"

	"github.com/appicon/icon-generator/internal/instance"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type Options struct {
	Region      string
	Endpoint    string
	AccessToken string
	SecretKey   string
}

type Instance struct {
	client     *s3.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
}

func New(ctx context.Context, o Options) (instance.S3, error) {
	cfg := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(o.AccessToken, o.SecretKey, ""),
		Region:           aws.String(o.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if o.Endpoint != "" {
		cfg.Endpoint = aws.String(o.Endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	return &Instance{
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		downloader: s3manager.NewDownloader(sess),
	}, nil
}

func (i *Instance) DownloadFile(ctx context.Context, output io.WriterAt, opts *s3.GetObjectInput) error {
	_, err := i.downloader.DownloadWithContext(ctx, output, opts)

	return err
}

func (i *Instance) UploadFile(ctx context.Context, opts *s3manager.UploadInput) error {
	_, err := i.uploader.UploadWithContext(ctx, opts)

	return err
}

func (i *Instance) ListBuckets(ctx context.Context) ([]*s3.Bucket, error) {
	resp, err := i.client.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}

	return resp.Buckets, nil
}
