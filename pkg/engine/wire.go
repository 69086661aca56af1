package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/injesh/injesh/pkg/ierrors"
)

// apiResponse is a decoded, de-chunked HTTP response from the engine
// socket: a status code and a raw JSON body with headers and any
// chunked-transfer-encoding framing already stripped.
type apiResponse struct {
	StatusCode int
	Body       []byte
}

// request issues method/path with an optional url.Values query over the
// Unix-domain socket at e.SocketPath, per spec.md §4.2's wire protocol:
// HTTP/1.1, Host: localhost, Connection: close, form-urlencoded query.
func (e *DockerEngine) request(method, path string, query url.Values) (*apiResponse, error) {
	requestPath := path
	if len(query) > 0 {
		requestPath = path + "?" + query.Encode()
	}

	conn, err := net.Dial("unix", e.SocketPath)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.KindInvalidResponse, err, "dialing "+e.SocketPath)
	}
	defer conn.Close()

	req := method + " " + requestPath + " HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n"
	if _, err := conn.Write([]byte(req)); err != nil {
		return nil, ierrors.Wrap(ierrors.KindInvalidResponse, err, "writing request")
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.KindInvalidResponse, err, "reading response")
	}

	return parseResponse(raw)
}

// parseResponse splits the raw HTTP/1.1 response into status line,
// headers, and a de-chunked body.
func parseResponse(raw []byte) (*apiResponse, error) {
	headerEnd := bytes.Index(raw, []byte("\r\n\r\n"))
	if headerEnd < 0 {
		return nil, ierrors.New(ierrors.KindInvalidResponse, "no header/body separator in response")
	}

	head := string(raw[:headerEnd])
	body := raw[headerEnd+4:]

	lines := strings.Split(head, "\r\n")
	if len(lines) == 0 {
		return nil, ierrors.New(ierrors.KindInvalidResponse, "empty response head")
	}

	statusCode, err := parseStatusLine(lines[0])
	if err != nil {
		return nil, err
	}

	chunked := false
	for _, line := range lines[1:] {
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "transfer-encoding:") && strings.Contains(lower, "chunked") {
			chunked = true
			break
		}
	}

	if chunked {
		body, err = dechunk(body)
		if err != nil {
			return nil, err
		}
	}

	return &apiResponse{StatusCode: statusCode, Body: bytes.TrimSpace(body)}, nil
}

func parseStatusLine(line string) (int, error) {
	// "HTTP/1.1 200 OK"
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, ierrors.New(ierrors.KindInvalidResponse, "malformed status line: "+line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, ierrors.Wrap(ierrors.KindInvalidResponse, err, "malformed status code: "+line)
	}
	return code, nil
}

// dechunk strips chunked-transfer-encoding length lines, concatenating
// the data of each chunk until the terminating zero-length chunk.
func dechunk(body []byte) ([]byte, error) {
	reader := bufio.NewReader(bytes.NewReader(body))
	var out bytes.Buffer

	for {
		sizeLine, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && sizeLine == "" {
				break
			}
			if err != io.EOF {
				return nil, ierrors.Wrap(ierrors.KindInvalidResponse, err, "reading chunk size")
			}
		}
		sizeLine = strings.TrimSpace(sizeLine)
		if sizeLine == "" {
			continue
		}

		// A chunk extension, if present, follows a ';'.
		if i := strings.IndexByte(sizeLine, ';'); i >= 0 {
			sizeLine = sizeLine[:i]
		}

		size, convErr := strconv.ParseInt(sizeLine, 16, 64)
		if convErr != nil {
			// Not a chunk-size line at all: treat the remainder of the
			// buffer as plain, unframed body (some engines omit chunking
			// details the core doesn't need to special-case).
			out.WriteString(sizeLine)
			rest, _ := io.ReadAll(reader)
			out.Write(rest)
			break
		}
		if size == 0 {
			break
		}

		chunk := make([]byte, size)
		if _, err := io.ReadFull(reader, chunk); err != nil {
			return nil, ierrors.Wrap(ierrors.KindInvalidResponse, err, "reading chunk data")
		}
		out.Write(chunk)

		// consume the trailing CRLF after the chunk data
		_, _ = reader.ReadString('\n')
	}

	return out.Bytes(), nil
}

// apiErrorBody is the {"message": "..."} shape the engine returns on
// failure.
type apiErrorBody struct {
	Message string `json:"message"`
}

// classify turns a status code plus body into the taxonomy's engine
// adapter errors, per spec.md §4.2/§7.
func classify(resp *apiResponse) error {
	var errBody apiErrorBody
	if json.Unmarshal(resp.Body, &errBody) == nil && errBody.Message != "" {
		return ierrors.New(ierrors.KindAPIResponseError, errBody.Message)
	}

	switch resp.StatusCode {
	case 404:
		return ierrors.New(ierrors.KindContainerNotFound, "container not found")
	case 500:
		return ierrors.New(ierrors.KindAPIServerError, "engine returned a server error")
	default:
		return ierrors.New(ierrors.KindInvalidResponse, "unexpected status code")
	}
}
