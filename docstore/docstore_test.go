package docstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_WriteReadList(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "HumanMadeObject/ab/abcd.json", []byte(`{"a":1}`)))
	require.NoError(t, s.Write(ctx, "Activity/01/0123.json", []byte(`{"b":2}`)))
	require.NoError(t, s.Write(ctx, "postsale.dot", []byte("digraph {}")))

	data, err := s.Read(ctx, "HumanMadeObject/ab/abcd.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	names, err := s.List(ctx, []string{"**/*.json", "HumanMadeObject/**/*.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Activity/01/0123.json", "HumanMadeObject/ab/abcd.json"}, names)

	entries, err := os.ReadDir(filepath.Join(dir, "HumanMadeObject", "ab"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestFS_Overwrite(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "a.json", []byte("first")))
	require.NoError(t, s.Write(ctx, "a.json", []byte("second")))
	data, err := s.Read(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFS_Errors(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Read(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Write(ctx, "../escape.json", nil))
	assert.Error(t, s.Write(ctx, "", nil))

	_, err = s.List(ctx, []string{"[unterminated"})
	assert.Error(t, err)
}

// fakeS3 is an in-memory bucket that pages listings two keys at a time.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) && k > aws.ToString(in.ContinuationToken) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	if len(keys) > 2 {
		keys = keys[:2]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3_WriteReadList(t *testing.T) {
	fake := newFakeS3()
	fake.objects["elsewhere/x.json"] = []byte("{}")
	s := NewS3(fake, "bucket", "/runs/knoedler/")
	ctx := context.Background()

	for _, name := range []string{"a/1.json", "a/2.json", "b/3.json", "graph.dot"} {
		require.NoError(t, s.Write(ctx, name, []byte(name)))
	}
	assert.Contains(t, fake.objects, "runs/knoedler/a/1.json")
	assert.Equal(t, "application/ld+json", fake.types["runs/knoedler/a/1.json"])
	assert.Equal(t, "text/vnd.graphviz", fake.types["runs/knoedler/graph.dot"])

	names, err := s.List(ctx, []string{"**/*.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1.json", "a/2.json", "b/3.json"}, names)

	data, err := s.Read(ctx, "b/3.json")
	require.NoError(t, err)
	assert.Equal(t, "b/3.json", string(data))

	_, err = s.Read(ctx, "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.List(ctx, []string{"[bad"})
	assert.Error(t, err)
}
