// Package uploads fabricates public references for uploaded listing photos.
// Nothing is stored; the references only follow the public files layout.
package uploads

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var ErrNoFiles = errors.New("no files uploaded")

type Service struct {
	baseURL string
}

// NewService uses baseURL as the public files host, e.g. https://files.example.com.
func NewService(baseURL string) *Service {
	return &Service{baseURL: strings.TrimRight(baseURL, "/")}
}

// References returns one reference per file name, in input order.
func (s *Service) References(filenames []string) ([]string, error) {
	if len(filenames) == 0 {
		return nil, ErrNoFiles
	}

	urls := make([]string, 0, len(filenames))
	for _, name := range filenames {
		urls = append(urls, s.baseURL+"/uploads/"+url.PathEscape(path.Base(name)))
	}
	return urls, nil
}
