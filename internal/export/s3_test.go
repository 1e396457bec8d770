package export

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3Destination_Write(t *testing.T) {
	fake := &fakeS3{}
	dest := &S3Destination{client: fake, bucket: "records", prefix: "exports/prod"}

	if err := dest.Write(context.Background(), "records_export_20240301_093000.json", []byte("[]\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := aws.ToString(fake.input.Bucket); got != "records" {
		t.Errorf("Bucket = %q", got)
	}
	if got := aws.ToString(fake.input.Key); got != "exports/prod/records_export_20240301_093000.json" {
		t.Errorf("Key = %q", got)
	}
	if got := aws.ToString(fake.input.ContentType); got != "application/json" {
		t.Errorf("ContentType = %q", got)
	}
	if string(fake.body) != "[]\n" {
		t.Errorf("body = %q", fake.body)
	}
}

func TestS3Destination_Error(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	dest := &S3Destination{client: fake, bucket: "records"}

	err := dest.Write(context.Background(), "a.csv", []byte("x"))
	if !errors.Is(err, fake.err) {
		t.Fatalf("expected wrapped access denied, got %v", err)
	}
}

func TestS3Destination_Location(t *testing.T) {
	for _, tc := range []struct {
		prefix, want string
	}{
		{"", "s3://records/a.csv"},
		{"exports", "s3://records/exports/a.csv"},
		{"exports/", "s3://records/exports/a.csv"},
	} {
		dest := &S3Destination{bucket: "records", prefix: tc.prefix}
		if got := dest.Location("a.csv"); got != tc.want {
			t.Errorf("prefix %q: Location = %q, want %q", tc.prefix, got, tc.want)
		}
	}
}

func TestContentType(t *testing.T) {
	for name, want := range map[string]string{
		"a.csv":  "text/csv",
		"a.json": "application/json",
		"a.bin":  "application/octet-stream",
	} {
		if got := contentType(name); got != want {
			t.Errorf("contentType(%q) = %q, want %q", name, got, want)
		}
	}
}
