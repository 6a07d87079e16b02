package img

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Fetch loads a remote image and returns a new Buffer and its format.
func Fetch(src string, client *http.Client) (*Buffer, string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	if src == "" {
		return nil, "", fmt.Errorf("no image URL")
	}

	rsp, err := client.Get(src)
	if err != nil {
		return nil, "", err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode/100 != 2 {
		return nil, "", fmt.Errorf("invalid response status (%d)", rsp.StatusCode)
	}

	return Decode(rsp.Body)
}

// Load reads an image from a local path or an http(s) URL.
func Load(src string, client *http.Client) (*Buffer, string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return Fetch(src, client)
	}

	fd, err := os.Open(src)
	if err != nil {
		return nil, "", err
	}
	defer fd.Close()

	return Decode(fd)
}
