/*
Copyright © 2024 the RuNeVis authors.
This file is part of RuNeVis.

RuNeVis is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RuNeVis is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RuNeVis.  If not, see <http://www.gnu.org/licenses/>.
*/

package ncstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
	"gocloud.dev/gcp"
)

// maxRetries is the number of times a failed download is retried.
const maxRetries = 5

// IsBlob reports whether a dataset path names an object in blob
// storage rather than a local file. Inputs at such paths are staged to
// a temporary file before they are opened, and outputs are staged
// locally and uploaded when the Writer is closed.
func IsBlob(path string) bool {
	for _, scheme := range []string{"gs://", "s3://", "file://"} {
		if strings.HasPrefix(path, scheme) {
			return true
		}
	}
	return false
}

// OpenBucket opens the bucket that holds staged datasets. bucketURL is
// the part of a dataset path before the object key: "file:///dir" for a
// local directory, "gs://name" for Google Cloud Storage or "s3://name"
// for AWS S3.
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("ncstore: parsing bucket %s: %v", bucketURL, err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.OpenBucket(u.Host+u.Path, nil)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	}
	return nil, fmt.Errorf("ncstore: unsupported storage provider %q in %s", u.Scheme, bucketURL)
}

// gsBucket opens a Google Cloud Storage bucket with application
// default credentials.
func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// defaultRegion is used for S3 when AWS_REGION is unset.
const defaultRegion = "us-east-2"

// s3Bucket opens an AWS S3 bucket with credentials from AWS_ACCESS_KEY_ID
// and AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = defaultRegion
	}
	s, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}

// splitBlob splits a blob path into the URL of its bucket and its key.
// For the file provider, the bucket is the directory holding the file.
func splitBlob(path string) (bucketURL, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "file" {
		p := u.Host + u.Path
		return "file://" + filepath.Dir(p), filepath.Base(p), nil
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("ncstore: blob path %s has no object key", path)
	}
	return u.Scheme + "://" + u.Host, key, nil
}

// staged is a local copy of a remote file.
type staged struct {
	dir, local string
}

func (s *staged) cleanup() {
	if s != nil {
		os.RemoveAll(s.dir)
	}
}

// download copies the blob at path into a temporary directory,
// retrying transient failures with exponential backoff.
func download(ctx context.Context, path string, log logrus.FieldLogger) (*staged, error) {
	bucketURL, key, err := splitBlob(path)
	if err != nil {
		return nil, err
	}
	bucket, err := OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	defer bucket.Close()

	dir, err := os.MkdirTemp("", "runevis")
	if err != nil {
		return nil, fmt.Errorf("ncstore: creating temporary download directory: %v", err)
	}
	s := &staged{dir: dir, local: filepath.Join(dir, filepath.Base(key))}

	op := func() error {
		r, err := bucket.NewReader(ctx, key, nil)
		if err != nil {
			if gcerrors.Code(err) == gcerrors.NotFound {
				return backoff.Permanent(err)
			}
			return err
		}
		defer r.Close()
		w, err := os.Create(s.local)
		if err != nil {
			return backoff.Permanent(err)
		}
		if _, err := io.Copy(w, r); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	err = backoff.RetryNotify(op, b, func(err error, d time.Duration) {
		log.WithFields(logrus.Fields{"path": path}).Warnf("download failed: %v; retrying in %v", err, d)
	})
	if err != nil {
		s.cleanup()
		return nil, err
	}
	log.WithFields(logrus.Fields{"path": path, "local": s.local}).Debug("downloaded")
	return s, nil
}

// uploadLocation returns a temporary local path for a file that
// will be uploaded to path.
func uploadLocation(path string) (string, error) {
	_, key, err := splitBlob(path)
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp("", "runevis")
	if err != nil {
		return "", fmt.Errorf("ncstore: creating temporary upload directory: %v", err)
	}
	return filepath.Join(dir, filepath.Base(key)), nil
}

// upload copies the local file to the blob at path and removes the
// local copy.
func upload(ctx context.Context, local, path string, log logrus.FieldLogger) error {
	defer os.RemoveAll(filepath.Dir(local))
	bucketURL, key, err := splitBlob(path)
	if err != nil {
		return err
	}
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("ncstore: opening file '%s' for upload: %v", local, err)
	}
	defer r.Close()
	bucket, err := OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("ncstore: opening bucket to upload file '%s': %v", path, err)
	}
	defer bucket.Close()
	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("ncstore: opening writer to upload file '%s': %v", path, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("ncstore: uploading file '%s' to '%s': %v", local, path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ncstore: uploading file '%s' to '%s': %v", local, path, err)
	}
	log.WithFields(logrus.Fields{"path": path}).Debug("uploaded")
	return nil
}
