package s3

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// MockObject is an uploaded object together with the metadata it was sent with.
type MockObject struct {
	Data         []byte
	ContentType  string
	ACL          string
	CacheControl string
}

type MockInstance struct {
	mtx     sync.Mutex
	buckets map[string]map[string]MockObject
}

// NewMock seeds the store with files, keyed by bucket then key.
func NewMock(ctx context.Context, files map[string]map[string][]byte) (*MockInstance, error) {
	m := &MockInstance{
		buckets: map[string]map[string]MockObject{},
	}

	for bucket, objects := range files {
		m.buckets[bucket] = map[string]MockObject{}
		for key, data := range objects {
			m.buckets[bucket][key] = MockObject{Data: data}
		}
	}

	return m, nil
}

func (m *MockInstance) DownloadFile(ctx context.Context, output io.WriterAt, opts *s3.GetObjectInput) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	obj, ok := m.buckets[aws.StringValue(opts.Bucket)][aws.StringValue(opts.Key)]
	if !ok {
		return fmt.Errorf("NoSuchKey: %s/%s", aws.StringValue(opts.Bucket), aws.StringValue(opts.Key))
	}

	_, err := output.WriteAt(obj.Data, 0)

	return err
}

func (m *MockInstance) UploadFile(ctx context.Context, opts *s3manager.UploadInput) error {
	data, err := io.ReadAll(opts.Body)
	if err != nil {
		return err
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	bucket, ok := m.buckets[aws.StringValue(opts.Bucket)]
	if !ok {
		return fmt.Errorf("NoSuchBucket: %s", aws.StringValue(opts.Bucket))
	}

	bucket[aws.StringValue(opts.Key)] = MockObject{
		Data:         data,
		ContentType:  aws.StringValue(opts.ContentType),
		ACL:          aws.StringValue(opts.ACL),
		CacheControl: aws.StringValue(opts.CacheControl),
	}

	return nil
}

func (m *MockInstance) ListBuckets(ctx context.Context) ([]*s3.Bucket, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	names := make([]string, 0, len(m.buckets))
	for name := range m.buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	buckets := make([]*s3.Bucket, len(names))
	for i, name := range names {
		buckets[i] = &s3.Bucket{Name: aws.String(name)}
	}

	return buckets, nil
}

// Object returns a stored object.
func (m *MockInstance) Object(bucket, key string) (MockObject, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	obj, ok := m.buckets[bucket][key]

	return obj, ok
}

// Keys lists the keys of a bucket in sorted order.
func (m *MockInstance) Keys(bucket string) []string {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	keys := make([]string, 0, len(m.buckets[bucket]))
	for key := range m.buckets[bucket] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
