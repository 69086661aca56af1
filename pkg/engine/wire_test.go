package engine

import (
	"testing"

	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/stretchr/testify/assert"
)

func TestDechunk(t *testing.T) {
	type scenario struct {
		body     string
		expected string
	}

	scenarios := []scenario{
		{
			"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n",
			"Wikipedia",
		},
		{
			"0\r\n\r\n",
			"",
		},
	}

	for _, s := range scenarios {
		out, err := dechunk([]byte(s.body))
		assert.NoError(t, err)
		assert.Equal(t, s.expected, string(out))
	}
}

func TestParseStatusLine(t *testing.T) {
	code, err := parseStatusLine("HTTP/1.1 200 OK")
	assert.NoError(t, err)
	assert.Equal(t, 200, code)

	_, err = parseStatusLine("garbage")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	resp := &apiResponse{StatusCode: 404, Body: []byte(`{}`)}
	assert.True(t, ierrors.Is(classify(resp), ierrors.KindContainerNotFound))

	resp = &apiResponse{StatusCode: 500, Body: []byte(`{}`)}
	assert.True(t, ierrors.Is(classify(resp), ierrors.KindAPIServerError))

	resp = &apiResponse{StatusCode: 409, Body: []byte(`{"message":"conflict"}`)}
	assert.True(t, ierrors.Is(classify(resp), ierrors.KindAPIResponseError))
}
