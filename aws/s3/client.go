package s3

import (
	"context"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/relloyd/bqload/blobstore"
)

const listPageSize = 1000

var _ blobstore.Store = &Client{}

// NewClient creates an S3 client for region using the default AWS credential chain.
// The region may be empty in which case the SDK falls back to AWS_REGION.
func NewClient(region string) *Client {
	awsConfig := aws.NewConfig()
	if region != "" {
		awsConfig.Region = aws.String(region)
	}
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		Config:            *awsConfig,
		SharedConfigState: session.SharedConfigEnable,
	}))
	return NewClientWithAPI(s3.New(sess))
}

func NewClientWithAPI(api s3iface.S3API) *Client {
	return &Client{api: api}
}

type Client struct {
	api s3iface.S3API
}

func (c *Client) List(ctx context.Context, bucket string, prefix string) (keys []string, err error) {
	keys = make([]string, 0, listPageSize)
	lastKey := ""
	for {
		params := &s3.ListObjectsInput{
			Bucket:  aws.String(bucket),
			Marker:  aws.String(lastKey),
			MaxKeys: aws.Int64(listPageSize),
			Prefix:  aws.String(prefix),
		}
		resp, err := c.api.ListObjectsWithContext(ctx, params)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to list s3://%v/%v", bucket, prefix)
		}
		for _, v := range resp.Contents {
			keys = append(keys, aws.StringValue(v.Key))
		}
		if len(keys) > 0 {
			lastKey = keys[len(keys)-1]
		}
		if !aws.BoolValue(resp.IsTruncated) {
			break
		}
	}
	return
}

func (c *Client) Copy(ctx context.Context, srcBucket string, srcKey string, dstBucket string, dstKey string) error {
	_, err := c.api.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(url.PathEscape(srcBucket + "/" + srcKey)),
	})
	return err
}

func (c *Client) Delete(ctx context.Context, bucket string, key string) error {
	_, err := c.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

// Open returns blobstore.ErrObjectNotFound if the given key doesn't exist.
func (c *Client) Open(ctx context.Context, bucket string, key string) (io.ReadCloser, error) {
	res, err := c.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, errors.Wrapf(blobstore.ErrObjectNotFound, "s3://%v/%v", bucket, key)
		}
		return nil, err
	}
	return res.Body, nil
}
