package s3

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/relloyd/hpingest/logger"
	"github.com/relloyd/hpingest/watermark"
)

// NewBucketLister returns a Lister for the bucket using the default AWS credential chain.
func NewBucketLister(log logger.Logger, bucket, region, prefix string) (*BucketLister, error) {
	awsConfig := aws.NewConfig()
	awsConfig.Region = aws.String(region)
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create AWS session")
	}
	return NewBucketListerWithAPI(log, bucket, prefix, s3.New(sess)), nil
}

func NewBucketListerWithAPI(log logger.Logger, bucket, prefix string, api s3iface.S3API) *BucketLister {
	return &BucketLister{
		log:    log,
		bucket: strings.TrimPrefix(bucket, "s3://"),
		prefix: prefix,
		api:    api,
	}
}

// BucketLister lists objects in an S3 bucket below an optional bucket prefix.
// Keys are returned relative to the bucket prefix, which is how an external stage
// pointing at s3://<bucket>/<prefix> names them.
type BucketLister struct {
	log    logger.Logger
	bucket string
	prefix string
	api    s3iface.S3API
}

func (s *BucketLister) List(ctx context.Context, key string) ([]watermark.Object, error) {
	retval := make([]watermark.Object, 0, 1000)
	params := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int64(1000),
		Prefix:  aws.String(s.getKeyWithPrefix(key)),
	}
	pages := 0
	err := s.api.ListObjectsV2PagesWithContext(ctx, params, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		pages++
		for _, v := range page.Contents {
			if v.Key == nil || strings.HasSuffix(*v.Key, "/") { // skip folder placeholders.
				continue
			}
			retval = append(retval, watermark.Object{
				Key:          s.trimPrefix(*v.Key),
				Size:         aws.Int64Value(v.Size),
				LastModified: aws.TimeValue(v.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list S3 bucket %q with prefix %q", s.bucket, s.getKeyWithPrefix(key))
	}
	s.log.Debug("listed ", len(retval), " objects in ", pages, " pages from bucket '", s.bucket, "' prefix '", s.getKeyWithPrefix(key), "'")
	return retval, nil
}

func (s *BucketLister) getKeyWithPrefix(key string) string {
	if s.prefix != "" {
		return strings.TrimRight(s.prefix, "/") + "/" + strings.TrimLeft(key, "/") // ensure trailing slash after prefix.
	}
	return key
}

func (s *BucketLister) trimPrefix(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, strings.TrimRight(s.prefix, "/")), "/")
}
