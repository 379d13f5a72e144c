package storage

import (
	"fmt"
	"strings"
)

// Scheme identifies where a document lives.
type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeHTTP Scheme = "http"
	SchemeS3   Scheme = "s3"
)

// Ref is a parsed document reference:
// - file://path or absolute/relative filesystem paths
// - http(s):// URLs (read only)
// - s3://bucket/key
type Ref struct {
	Scheme Scheme
	Path   string // local path for SchemeFile
	URL    string // full URL for SchemeHTTP
	Bucket string
	Key    string
}

// ParseRef classifies a reference string.
func ParseRef(ref string) (Ref, error) {
	switch {
	case strings.HasPrefix(ref, "s3://"):
		path := strings.TrimPrefix(ref, "s3://")
		slash := strings.Index(path, "/")
		if slash <= 0 || slash == len(path)-1 {
			return Ref{}, fmt.Errorf("invalid s3 url: %s", ref)
		}
		return Ref{Scheme: SchemeS3, Bucket: path[:slash], Key: path[slash+1:]}, nil
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return Ref{Scheme: SchemeHTTP, URL: ref}, nil
	case strings.HasPrefix(ref, "file://"):
		return Ref{Scheme: SchemeFile, Path: strings.TrimPrefix(ref, "file://")}, nil
	case ref == "":
		return Ref{}, fmt.Errorf("empty document reference")
	default:
		return Ref{Scheme: SchemeFile, Path: ref}, nil
	}
}

func (r Ref) String() string {
	switch r.Scheme {
	case SchemeS3:
		return "s3://" + r.Bucket + "/" + r.Key
	case SchemeHTTP:
		return r.URL
	default:
		return r.Path
	}
}
